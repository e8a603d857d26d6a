package pricing

import (
	"errors"
	"fmt"
	"math"
)

// Bracket maps a closed quantity interval to an additional order-level
// discount in basis points. Max == math.MaxInt marks the open-ended bracket.
type Bracket struct {
	Min         int
	Max         int
	DiscountBps int
}

// BracketTable is an ordered, validated list of quantity discount brackets.
type BracketTable struct {
	brackets []Bracket
}

var errEmptyBracketTable = errors.New("pricing: bracket table is empty")

// NewBracketTable validates the bracket list once so lookups stay branch-free:
// ascending, gapless, non-overlapping, discounts non-decreasing, and the last
// bracket unbounded.
func NewBracketTable(brackets []Bracket) (BracketTable, error) {
	if len(brackets) == 0 {
		return BracketTable{}, errEmptyBracketTable
	}
	for i, b := range brackets {
		if b.Min <= 0 {
			return BracketTable{}, fmt.Errorf("pricing: bracket %d has non-positive min %d", i, b.Min)
		}
		if b.Max < b.Min {
			return BracketTable{}, fmt.Errorf("pricing: bracket %d has max %d below min %d", i, b.Max, b.Min)
		}
		if b.DiscountBps < 0 || b.DiscountBps > 10000 {
			return BracketTable{}, fmt.Errorf("pricing: bracket %d has discount %d bps outside [0,10000]", i, b.DiscountBps)
		}
		if i > 0 {
			prev := brackets[i-1]
			if b.Min != prev.Max+1 {
				return BracketTable{}, fmt.Errorf("pricing: gap or overlap between brackets %d and %d", i-1, i)
			}
			if b.DiscountBps < prev.DiscountBps {
				return BracketTable{}, fmt.Errorf("pricing: bracket %d discount decreases", i)
			}
		}
	}
	if brackets[len(brackets)-1].Max != math.MaxInt {
		return BracketTable{}, errors.New("pricing: last bracket must be unbounded")
	}
	owned := make([]Bracket, len(brackets))
	copy(owned, brackets)
	return BracketTable{brackets: owned}, nil
}

// DefaultBracketTable returns the standard wholesale discount ladder.
func DefaultBracketTable() BracketTable {
	table, err := NewBracketTable([]Bracket{
		{Min: 30, Max: 49, DiscountBps: 0},
		{Min: 50, Max: 99, DiscountBps: 500},
		{Min: 100, Max: 199, DiscountBps: 1000},
		{Min: 200, Max: 499, DiscountBps: 1500},
		{Min: 500, Max: math.MaxInt, DiscountBps: 2000},
	})
	if err != nil {
		panic(err)
	}
	return table
}

// Lookup returns the discount in basis points for the given total order
// quantity. Quantities below the first bracket return 0 without error:
// discount eligibility is independent from order admissibility.
func (t BracketTable) Lookup(totalQty int) int {
	for _, b := range t.brackets {
		if totalQty >= b.Min && totalQty <= b.Max {
			return b.DiscountBps
		}
	}
	return 0
}

// Next returns the closest bracket above totalQty that grants a higher
// discount than the current one. Used to suggest the next tier to buyers.
func (t BracketTable) Next(totalQty int) (Bracket, bool) {
	current := t.Lookup(totalQty)
	for _, b := range t.brackets {
		if b.Min > totalQty && b.DiscountBps > current {
			return b, true
		}
	}
	return Bracket{}, false
}
