package pricing

import "github.com/noah-isme/backend-atacado/internal/shipping"

// Summary is the final payable order: a validation result plus shipping.
type Summary struct {
	Validation Result
	Shipping   shipping.Quote
	FinalValue Money
}

// BuildSummary composes a validation result with a shipping quote. Shipping
// is added after validation and is not subject to the minimum-order or
// cart-limit checks, so validation is never re-run here.
func BuildSummary(res Result, quote shipping.Quote) Summary {
	return Summary{
		Validation: res,
		Shipping:   quote,
		FinalValue: res.TotalValue + quote.Value,
	}
}
