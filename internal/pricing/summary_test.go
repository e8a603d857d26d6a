package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/pricing"
	"github.com/noah-isme/backend-atacado/internal/shipping"
)

func TestBuildSummary(t *testing.T) {
	t.Parallel()

	res := validateDefaults(pricing.Cart{Lines: []pricing.Line{capinhaLine(60)}})
	require.True(t, res.IsValid)

	quote := shipping.DefaultRateTable().Calculate("sudeste", int64(res.TotalValue))

	sum := pricing.BuildSummary(res, quote)
	require.Equal(t, res, sum.Validation)
	require.Equal(t, quote, sum.Shipping)
	require.Equal(t, res.TotalValue+pricing.Money(quote.Value), sum.FinalValue)
}

func TestBuildSummaryFreeShipping(t *testing.T) {
	t.Parallel()

	// 500 películas at the wholesale price: 500*350 = 175000, minus the 20%
	// bracket = 140000, comfortably above the free-shipping threshold.
	res := validateDefaults(pricing.Cart{Lines: []pricing.Line{peliculaLine(500)}})
	require.True(t, res.IsValid)

	quote := shipping.DefaultRateTable().Calculate("norte", int64(res.TotalValue))
	require.True(t, quote.IsFree)

	sum := pricing.BuildSummary(res, quote)
	require.Equal(t, res.TotalValue, sum.FinalValue)
}
