package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/pricing"
)

func TestPriceKit(t *testing.T) {
	t.Parallel()

	kit := pricing.Kit{
		ID:   "kit-rev",
		Name: "Kit Revenda Inicial",
		Components: []pricing.KitComponent{
			{Product: pricing.Product{ID: "cap-01", NormalPrice: 1000, SpecialPrice: 700, SpecialPriceMinQty: 50}, Qty: 10},
			{Product: pricing.Product{ID: "pel-01", NormalPrice: 500, SpecialPrice: 350, SpecialPriceMinQty: 100}, Qty: 10},
		},
		Discount: 3000,
	}

	price, err := pricing.PriceKit(kit)
	require.NoError(t, err)
	// List price uses normal prices only, never the wholesale tier.
	require.Equal(t, pricing.Money(15000), price.ListPrice)
	require.Equal(t, pricing.Money(12000), price.SellPrice)
	require.Equal(t, pricing.Money(3000), price.DiscountAmount)
	require.Equal(t, 20, price.TotalQty)
	require.Equal(t, pricing.Money(600), price.PerUnitPrice)
	require.Equal(t, 2000, price.DiscountPercentBps)
}

func TestPriceKitDiscountFloorsAtZero(t *testing.T) {
	t.Parallel()

	kit := pricing.Kit{
		Components: []pricing.KitComponent{
			{Product: pricing.Product{NormalPrice: 1000}, Qty: 2},
		},
		Discount: 99999,
	}

	price, err := pricing.PriceKit(kit)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(0), price.SellPrice)
	require.Equal(t, pricing.Money(2000), price.DiscountAmount, "effective discount is clamped to the list price")
	require.Equal(t, 10000, price.DiscountPercentBps)
}

func TestPriceKitNegativeDiscountIgnored(t *testing.T) {
	t.Parallel()

	kit := pricing.Kit{
		Components: []pricing.KitComponent{
			{Product: pricing.Product{NormalPrice: 800}, Qty: 5},
		},
		Discount: -500,
	}

	price, err := pricing.PriceKit(kit)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(4000), price.SellPrice)
	require.Zero(t, price.DiscountAmount)
}

func TestPriceKitEmpty(t *testing.T) {
	t.Parallel()

	_, err := pricing.PriceKit(pricing.Kit{})
	require.ErrorIs(t, err, pricing.ErrEmptyKit)

	_, err = pricing.PriceKit(pricing.Kit{
		Components: []pricing.KitComponent{
			{Product: pricing.Product{NormalPrice: 1000}, Qty: 0},
		},
	})
	require.ErrorIs(t, err, pricing.ErrEmptyKit)
}
