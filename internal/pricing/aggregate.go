package pricing

// Line is a cart line item for a single product. Prices are carried from the
// catalog on every aggregation pass; the applied price is always re-derived
// here and never trusted from stored state.
type Line struct {
	ProductID          string
	Name               string
	Qty                int
	NormalPrice        Money
	SpecialPrice       Money
	SpecialPriceMinQty int
}

// KitLine is a promotional kit held in the cart. SellPrice and DiscountAmount
// are the per-set values frozen when the kit was added (snapshot pricing);
// they are never recomputed from live catalog prices.
type KitLine struct {
	KitID          string
	Name           string
	Sets           int
	UnitsPerSet    int
	SellPrice      Money
	DiscountAmount Money
}

// Cart is the engine's view of a session cart: insertion-ordered lines plus
// insertion-ordered kit references.
type Cart struct {
	Lines []Line
	Kits  []KitLine
}

// ItemTotal is the per-line result of an aggregation pass.
type ItemTotal struct {
	ProductID   string
	Name        string
	Qty         int
	UnitPrice   Money
	IsSpecial   bool
	LineTotal   Money
	LineSavings Money
}

// SavingOpportunity suggests how many more units unlock a product's wholesale
// tier. PotentialSaving is computed at the target quantity, not the current
// one: it advertises the full saving of reaching the threshold.
type SavingOpportunity struct {
	ProductID       string
	Name            string
	CurrentQty      int
	QtyNeeded       int
	PotentialSaving Money
}

// Totals aggregates a cart. All sums are plain int64 arithmetic so repeated
// aggregation of the same cart is bit-identical.
type Totals struct {
	TotalQty      int
	TotalPrice    Money
	TotalSavings  Money
	Items         []ItemTotal
	Opportunities []SavingOpportunity
}

// Aggregate resolves every line's unit price and computes cart totals,
// savings and saving opportunities. An empty cart yields zero totals.
// Lines with non-positive quantity are skipped; the caller rejects them
// before they reach the cart.
func Aggregate(cart Cart) Totals {
	totals := Totals{
		Items:         make([]ItemTotal, 0, len(cart.Lines)),
		Opportunities: make([]SavingOpportunity, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		if line.Qty <= 0 {
			continue
		}
		unit, special := ResolveUnitPrice(Product{
			ID:                 line.ProductID,
			Name:               line.Name,
			NormalPrice:        line.NormalPrice,
			SpecialPrice:       line.SpecialPrice,
			SpecialPriceMinQty: line.SpecialPriceMinQty,
		}, line.Qty)
		item := ItemTotal{
			ProductID: line.ProductID,
			Name:      line.Name,
			Qty:       line.Qty,
			UnitPrice: unit,
			IsSpecial: special,
			LineTotal: unit * Money(line.Qty),
		}
		if special {
			item.LineSavings = perUnitSaving(line) * Money(line.Qty)
		}
		totals.TotalQty += line.Qty
		totals.TotalPrice += item.LineTotal
		totals.TotalSavings += item.LineSavings
		totals.Items = append(totals.Items, item)

		if !special && line.SpecialPriceMinQty > line.Qty {
			saving := perUnitSaving(line) * Money(line.SpecialPriceMinQty)
			if saving > 0 {
				totals.Opportunities = append(totals.Opportunities, SavingOpportunity{
					ProductID:       line.ProductID,
					Name:            line.Name,
					CurrentQty:      line.Qty,
					QtyNeeded:       line.SpecialPriceMinQty - line.Qty,
					PotentialSaving: saving,
				})
			}
		}
	}
	for _, kit := range cart.Kits {
		if kit.Sets <= 0 {
			continue
		}
		totals.TotalQty += kit.Sets * kit.UnitsPerSet
		totals.TotalPrice += Money(kit.Sets) * kit.SellPrice
		if kit.DiscountAmount > 0 {
			totals.TotalSavings += Money(kit.Sets) * kit.DiscountAmount
		}
	}
	return totals
}

func perUnitSaving(line Line) Money {
	special := line.SpecialPrice
	if special > line.NormalPrice {
		special = line.NormalPrice
	}
	return line.NormalPrice - special
}
