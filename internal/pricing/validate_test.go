package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/pricing"
)

func validateDefaults(cart pricing.Cart) pricing.Result {
	return pricing.Validate(cart, pricing.DefaultLimits(), pricing.DefaultBracketTable())
}

func TestValidateBelowMinimumQty(t *testing.T) {
	t.Parallel()

	res := validateDefaults(pricing.Cart{Lines: []pricing.Line{capinhaLine(29)}})

	require.False(t, res.IsValid)
	require.False(t, res.MinimumMet)
	require.Contains(t, res.Errors, "adicione mais 1 peça para atingir o pedido mínimo de 30 peças")
}

func TestValidateBelowMinimumValue(t *testing.T) {
	t.Parallel()

	// 40 units at R$ 2,00: qty minimum met, value minimum not.
	cart := pricing.Cart{Lines: []pricing.Line{{
		ProductID:   "sup-01",
		Name:        "Suporte veicular",
		Qty:         40,
		NormalPrice: 200,
	}}}
	res := validateDefaults(cart)

	require.False(t, res.IsValid)
	require.False(t, res.MinimumMet)
	require.Contains(t, res.Errors,
		"faltam R$ 120,00 para atingir o valor mínimo de R$ 200,00")
}

func TestValidateOrderWithBracketDiscount(t *testing.T) {
	t.Parallel()

	// 60 capinhas at the wholesale price of R$ 7,00 each: subtotal R$ 420,00,
	// quantity lands in the 5% bracket.
	res := validateDefaults(pricing.Cart{Lines: []pricing.Line{capinhaLine(60)}})

	require.True(t, res.IsValid)
	require.True(t, res.MinimumMet)
	require.Empty(t, res.Errors)
	require.Equal(t, 60, res.TotalQty)
	require.Equal(t, 500, res.BracketDiscountBps)
	// 42000 - 5% = 39900.
	require.Equal(t, pricing.Money(39900), res.TotalValue)
	// Wholesale savings 60*(1000-700) plus the bracket discount.
	require.Equal(t, pricing.Money(18000+2100), res.DiscountApplied)
}

func TestValidateNoDiscountBracket(t *testing.T) {
	t.Parallel()

	// 35 units of a product without a special tier: valid, 0% bracket, and a
	// next-tier suggestion in the warnings.
	cart := pricing.Cart{Lines: []pricing.Line{{
		ProductID:   "fon-01",
		Name:        "Fone com fio",
		Qty:         35,
		NormalPrice: 900,
	}}}
	res := validateDefaults(cart)

	require.True(t, res.IsValid)
	require.Zero(t, res.BracketDiscountBps)
	require.Equal(t, pricing.Money(31500), res.TotalValue)
	require.Contains(t, res.Warnings,
		"a partir de 50 peças o pedido ganha 5% de desconto adicional")
}

func TestValidateSavingOpportunityWarning(t *testing.T) {
	t.Parallel()

	cart := pricing.Cart{Lines: []pricing.Line{
		capinhaLine(40),
		{ProductID: "cab-01", Name: "Cabo USB-C", Qty: 20, NormalPrice: 1500},
	}}
	res := validateDefaults(cart)

	require.True(t, res.IsValid)
	require.Contains(t, res.Warnings,
		"faltam 10 peças de Capinha transparente para desbloquear o preço de atacado e economizar R$ 150,00")
}

func TestValidateMaxQtyPerProduct(t *testing.T) {
	t.Parallel()

	res := validateDefaults(pricing.Cart{Lines: []pricing.Line{capinhaLine(501)}})

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors,
		"Capinha transparente: quantidade 501 excede o máximo de 500 unidades por produto")
}

func TestValidateMaxCartValue(t *testing.T) {
	t.Parallel()

	cart := pricing.Cart{Lines: []pricing.Line{{
		ProductID:   "pow-01",
		Name:        "Power bank 20000mAh",
		Qty:         500,
		NormalPrice: 20000,
	}}}
	res := validateDefaults(cart)

	require.False(t, res.IsValid)
	// 500 * 20000 = 10_000_000, minus the 20% bracket = 8_000_000.
	require.Equal(t, pricing.Money(8000000), res.TotalValue)
	require.Contains(t, res.Errors,
		"o valor do pedido (R$ 80.000,00) excede o limite de R$ 50.000,00")
}

func TestValidateMaxDistinctItems(t *testing.T) {
	t.Parallel()

	lines := make([]pricing.Line, 0, 51)
	for i := 0; i < 51; i++ {
		line := capinhaLine(1)
		lines = append(lines, line)
	}
	res := validateDefaults(pricing.Cart{Lines: lines})

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors, "o carrinho tem 51 itens distintos; o máximo é 50")
}

func TestValidateDeterministic(t *testing.T) {
	t.Parallel()

	cart := pricing.Cart{Lines: []pricing.Line{capinhaLine(60), peliculaLine(45)}}
	first := validateDefaults(cart)
	second := validateDefaults(cart)
	require.Equal(t, first, second)
}

func TestValidateEmptyCart(t *testing.T) {
	t.Parallel()

	res := validateDefaults(pricing.Cart{})

	require.False(t, res.IsValid)
	require.False(t, res.MinimumMet)
	require.Zero(t, res.TotalValue)
	require.Len(t, res.Errors, 2, "both the quantity and value minimums fail")
}
