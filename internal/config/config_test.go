package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/atacado",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 30, cfg.MinOrderQty)
	require.Equal(t, int64(20000), cfg.MinOrderValue)
	require.Equal(t, 50, cfg.MaxCartItems)
	require.Equal(t, 500, cfg.MaxQtyPerProduct)
	require.Equal(t, int64(5000000), cfg.MaxCartValue)
	require.Equal(t, int64(50000), cfg.FreeShippingThreshold)
	require.Equal(t, "BRL", cfg.CurrencyCode)
	require.Equal(t, 7*24*time.Hour, cfg.CartTTL)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":                "postgres://localhost:5432/atacado",
		"REDIS_URL":                   "redis://localhost:6379/0",
		"PORT":                        "9090",
		"PRICING_MIN_ORDER_QTY":       "12",
		"PRICING_MIN_ORDER_VALUE":     "10000",
		"SHIPPING_FREE_THRESHOLD":     "75000",
		"CART_TTL":                    "48h",
		"CORS_ALLOWED_ORIGINS":        "https://loja.example.com, https://admin.example.com",
		"CHECKOUT_RATE_LIMIT":         "5",
		"CHECKOUT_RATE_WINDOW":        "30s",
		"PRICING_MAX_QTY_PER_PRODUCT": "250",
	})
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 12, cfg.MinOrderQty)
	require.Equal(t, int64(10000), cfg.MinOrderValue)
	require.Equal(t, int64(75000), cfg.FreeShippingThreshold)
	require.Equal(t, 48*time.Hour, cfg.CartTTL)
	require.Equal(t, []string{"https://loja.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, int64(5), cfg.CheckoutRateLimit)
	require.Equal(t, 30*time.Second, cfg.CheckoutRateWindow)
	require.Equal(t, 250, cfg.MaxQtyPerProduct)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveMinimums(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":          "postgres://localhost:5432/atacado",
		"REDIS_URL":             "redis://localhost:6379/0",
		"PRICING_MIN_ORDER_QTY": "0",
	})
	require.Error(t, err)
}
