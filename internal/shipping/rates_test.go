package shipping_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/shipping"
)

func TestCalculateRegionalRates(t *testing.T) {
	t.Parallel()

	table := shipping.DefaultRateTable()

	cases := []struct {
		region string
		value  int64
		want   int64
		days   int
	}{
		{"sudeste", 30000, 2400, 3},
		{"sul", 30000, 2700, 5},
		{"centro-oeste", 30000, 3000, 6},
		{"nordeste", 30000, 3300, 8},
		{"norte", 30000, 3600, 10},
	}
	for _, tc := range cases {
		q := table.Calculate(tc.region, tc.value)
		require.Equal(t, tc.want, q.Value, "region=%s", tc.region)
		require.Equal(t, tc.days, q.Days, "region=%s", tc.region)
		require.False(t, q.IsFree)
	}
}

func TestCalculateFreeShippingThreshold(t *testing.T) {
	t.Parallel()

	table := shipping.DefaultRateTable()

	q := table.Calculate("sudeste", 49999)
	require.False(t, q.IsFree)
	require.Equal(t, int64(3999), q.Value)

	q = table.Calculate("sudeste", 50000)
	require.True(t, q.IsFree)
	require.Zero(t, q.Value)
	require.Equal(t, 3, q.Days, "free shipping keeps the region lead time")
}

func TestCalculateUnknownRegionUsesDefaults(t *testing.T) {
	t.Parallel()

	table := shipping.DefaultRateTable()

	q := table.Calculate("exterior", 30000)
	require.Equal(t, int64(3000), q.Value)
	require.Equal(t, 7, q.Days)
}

func TestCalculateNormalizesRegionCode(t *testing.T) {
	t.Parallel()

	table := shipping.DefaultRateTable()
	require.Equal(t, table.Calculate("sudeste", 30000), table.Calculate("  Sudeste ", 30000))
}

func TestCalculateZeroValue(t *testing.T) {
	t.Parallel()

	q := shipping.DefaultRateTable().Calculate("sul", 0)
	require.Zero(t, q.Value)
	require.False(t, q.IsFree)
}

func TestEstimatedDelivery(t *testing.T) {
	t.Parallel()

	q := shipping.Quote{Days: 5}
	from := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), q.EstimatedDelivery(from))
}
