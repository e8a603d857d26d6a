package pricing

// Money represents a monetary value stored in minor units (centavos).
type Money = int64

// Product carries the price fields needed to resolve a wholesale unit price.
type Product struct {
	ID                 string
	Name               string
	NormalPrice        Money
	SpecialPrice       Money
	SpecialPriceMinQty int
}

// ResolveUnitPrice returns the unit price in effect for the requested quantity
// and whether the wholesale tier was applied. The special price is capped at
// the normal price so a misconfigured product can never price above retail.
// Callers guarantee qty >= 1.
func ResolveUnitPrice(p Product, qty int) (Money, bool) {
	if p.SpecialPriceMinQty > 0 && qty >= p.SpecialPriceMinQty {
		special := p.SpecialPrice
		if special > p.NormalPrice {
			special = p.NormalPrice
		}
		return special, true
	}
	return p.NormalPrice, false
}
