package pricing

import "errors"

// ErrEmptyKit is returned for a kit whose components sum to zero quantity.
var ErrEmptyKit = errors.New("pricing: kit has no sellable quantity")

// KitComponent pairs a product with its fixed quantity inside a kit.
type KitComponent struct {
	Product Product
	Qty     int
}

// Kit is a fixed bundle sold as one unit with an absolute discount.
type Kit struct {
	ID         string
	Name       string
	Components []KitComponent
	Discount   Money
}

// KitPrice is the computed price of a kit bundle.
type KitPrice struct {
	ListPrice          Money
	SellPrice          Money
	PerUnitPrice       Money
	DiscountAmount     Money
	DiscountPercentBps int
	TotalQty           int
}

// PriceKit computes the bundle's sell price from its component list. The list
// price always uses normal prices: a kit is a fixed bundle, not a bulk line
// item, so component quantities never trigger the wholesale tier. A discount
// larger than the list price clamps the sell price to zero instead of going
// negative; the reported DiscountAmount is the effective (clamped) discount.
func PriceKit(kit Kit) (KitPrice, error) {
	var list Money
	var totalQty int
	for _, c := range kit.Components {
		if c.Qty <= 0 {
			continue
		}
		list += c.Product.NormalPrice * Money(c.Qty)
		totalQty += c.Qty
	}
	if totalQty == 0 {
		return KitPrice{}, ErrEmptyKit
	}
	discount := kit.Discount
	if discount < 0 {
		discount = 0
	}
	if discount > list {
		discount = list
	}
	sell := list - discount
	price := KitPrice{
		ListPrice:      list,
		SellPrice:      sell,
		PerUnitPrice:   sell / Money(totalQty),
		DiscountAmount: discount,
		TotalQty:       totalQty,
	}
	if list > 0 {
		price.DiscountPercentBps = int(discount * 10000 / list)
	}
	return price, nil
}
