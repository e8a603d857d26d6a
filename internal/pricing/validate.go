package pricing

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/backend-atacado/internal/common"
)

// Limits are the hard boundaries an order must respect.
type Limits struct {
	MinOrderQty      int
	MinOrderValue    Money
	MaxCartItems     int
	MaxQtyPerProduct int
	MaxCartValue     Money
}

// DefaultLimits returns the standard wholesale order limits.
func DefaultLimits() Limits {
	return Limits{
		MinOrderQty:      30,
		MinOrderValue:    20000,
		MaxCartItems:     50,
		MaxQtyPerProduct: 500,
		MaxCartValue:     5000000,
	}
}

// Result is the outcome of validating a cart against the wholesale rules.
// Business-rule failures are data, never errors: IsValid is false and Errors
// explains each violation in user-actionable terms. MinimumMet is reported
// independently so callers can tell "too small" apart from "too large".
type Result struct {
	IsValid            bool
	Errors             []string
	Warnings           []string
	TotalQty           int
	TotalValue         Money
	MinimumMet         bool
	DiscountApplied    Money
	BracketDiscountBps int
	Totals             Totals
}

// Validate aggregates the cart, applies the quantity-tier discount and checks
// minimums and hard limits in a single stateless pass. Calling it twice with
// the same inputs returns identical results.
func Validate(cart Cart, limits Limits, table BracketTable) Result {
	totals := Aggregate(cart)

	res := Result{
		Errors:   []string{},
		Warnings: []string{},
		TotalQty: totals.TotalQty,
		Totals:   totals,
	}

	bps := table.Lookup(totals.TotalQty)
	bracketDiscount := totals.TotalPrice * Money(bps) / 10000
	res.BracketDiscountBps = bps
	res.TotalValue = totals.TotalPrice - bracketDiscount
	res.DiscountApplied = totals.TotalSavings + bracketDiscount

	res.MinimumMet = true
	if totals.TotalQty < limits.MinOrderQty {
		res.MinimumMet = false
		missing := limits.MinOrderQty - totals.TotalQty
		res.Errors = append(res.Errors, fmt.Sprintf(
			"adicione mais %s para atingir o pedido mínimo de %d peças",
			pluralPecas(missing), limits.MinOrderQty))
	}
	if res.TotalValue < limits.MinOrderValue {
		res.MinimumMet = false
		missing := limits.MinOrderValue - res.TotalValue
		res.Errors = append(res.Errors, fmt.Sprintf(
			"faltam %s para atingir o valor mínimo de %s",
			common.FormatBRL(missing), common.FormatBRL(limits.MinOrderValue)))
	}

	if limits.MaxCartItems > 0 && len(cart.Lines) > limits.MaxCartItems {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"o carrinho tem %d itens distintos; o máximo é %d",
			len(cart.Lines), limits.MaxCartItems))
	}
	if limits.MaxQtyPerProduct > 0 {
		for _, line := range cart.Lines {
			if line.Qty > limits.MaxQtyPerProduct {
				res.Errors = append(res.Errors, fmt.Sprintf(
					"%s: quantidade %d excede o máximo de %d unidades por produto",
					line.Name, line.Qty, limits.MaxQtyPerProduct))
			}
		}
	}
	if limits.MaxCartValue > 0 && res.TotalValue > limits.MaxCartValue {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"o valor do pedido (%s) excede o limite de %s",
			common.FormatBRL(res.TotalValue), common.FormatBRL(limits.MaxCartValue)))
	}

	for _, opp := range totals.Opportunities {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"faltam %s de %s para desbloquear o preço de atacado e economizar %s",
			pluralPecas(opp.QtyNeeded), opp.Name, common.FormatBRL(opp.PotentialSaving)))
	}
	if bps == 0 {
		if next, ok := table.Next(totals.TotalQty); ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"a partir de %d peças o pedido ganha %s de desconto adicional",
				next.Min, formatBps(next.DiscountBps)))
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

func pluralPecas(n int) string {
	if n == 1 {
		return "1 peça"
	}
	return strconv.Itoa(n) + " peças"
}

// formatBps renders basis points as a percentage, e.g. 500 -> "5%", 750 -> "7,5%".
func formatBps(bps int) string {
	whole := bps / 100
	frac := bps % 100
	if frac == 0 {
		return strconv.Itoa(whole) + "%"
	}
	if frac%10 == 0 {
		return fmt.Sprintf("%d,%d%%", whole, frac/10)
	}
	return fmt.Sprintf("%d,%02d%%", whole, frac)
}
