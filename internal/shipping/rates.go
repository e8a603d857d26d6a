package shipping

import (
	"strings"
	"time"
)

// Region maps a destination region code to a proportional shipping rate (in
// basis points of the order value) and a delivery lead time.
type Region struct {
	Code     string
	RateBps  int
	LeadDays int
}

// Quote is the shipping cost estimate for an order.
type Quote struct {
	Value  int64 `json:"value"`
	Days   int   `json:"days"`
	IsFree bool  `json:"isFree"`
}

// RateTable resolves shipping quotes by destination region. Unknown regions
// degrade to the default rate and lead time; shipping estimation never fails
// a request.
type RateTable struct {
	regions         map[string]Region
	FreeThreshold   int64
	DefaultRateBps  int
	DefaultLeadDays int
}

// NewRateTable builds a rate table from the region list. Codes are matched
// case-insensitively.
func NewRateTable(regions []Region, freeThreshold int64) RateTable {
	table := RateTable{
		regions:         make(map[string]Region, len(regions)),
		FreeThreshold:   freeThreshold,
		DefaultRateBps:  1000,
		DefaultLeadDays: 7,
	}
	for _, r := range regions {
		code := normalizeCode(r.Code)
		if code == "" || r.RateBps < 0 || r.LeadDays <= 0 {
			continue
		}
		r.Code = code
		table.regions[code] = r
	}
	return table
}

// DefaultRateTable returns the standard Brazilian region rates with free
// shipping above R$ 500,00.
func DefaultRateTable() RateTable {
	return NewRateTable([]Region{
		{Code: "sudeste", RateBps: 800, LeadDays: 3},
		{Code: "sul", RateBps: 900, LeadDays: 5},
		{Code: "centro-oeste", RateBps: 1000, LeadDays: 6},
		{Code: "nordeste", RateBps: 1100, LeadDays: 8},
		{Code: "norte", RateBps: 1200, LeadDays: 10},
	}, 50000)
}

// Calculate returns the shipping quote for a destination region and order
// value. Orders at or above the free-shipping threshold ship for free but
// keep the region's lead time.
func (t RateTable) Calculate(region string, totalValue int64) Quote {
	rateBps := t.DefaultRateBps
	days := t.DefaultLeadDays
	if r, ok := t.regions[normalizeCode(region)]; ok {
		rateBps = r.RateBps
		days = r.LeadDays
	}
	if t.FreeThreshold > 0 && totalValue >= t.FreeThreshold {
		return Quote{Value: 0, Days: days, IsFree: true}
	}
	if totalValue <= 0 {
		return Quote{Value: 0, Days: days}
	}
	return Quote{
		Value: totalValue * int64(rateBps) / 10000,
		Days:  days,
	}
}

// Regions lists the configured regions in unspecified order.
func (t RateTable) Regions() []Region {
	out := make([]Region, 0, len(t.regions))
	for _, r := range t.regions {
		out = append(out, r)
	}
	return out
}

// EstimatedDelivery converts a quote's lead time into a delivery date.
func (q Quote) EstimatedDelivery(from time.Time) time.Time {
	return from.AddDate(0, 0, q.Days)
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
