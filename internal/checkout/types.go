package checkout

import (
	"slices"

	"github.com/samber/lo"
)

// PriceList maps an item code to its unit price.
type PriceList map[string]int

// Price reports the unit price of item and whether the item is known.
func (p PriceList) Price(item string) (int, bool) {
	price, ok := p[item]
	return price, ok
}

// Multiset counts item codes. It is used both for deal requirements and baskets.
type Multiset map[string]int

// Clone returns an independent copy of m.
func (m Multiset) Clone() Multiset {
	out := make(Multiset, len(m))
	for item, qty := range m {
		out[item] = qty
	}
	return out
}

// Contains reports whether m holds at least the quantities in other.
func (m Multiset) Contains(other Multiset) bool {
	for item, qty := range other {
		if m[item] < qty {
			return false
		}
	}
	return true
}

// Subtract removes other from m in place. Items that reach zero are deleted.
func (m Multiset) Subtract(other Multiset) {
	for item, qty := range other {
		m[item] -= qty
		if m[item] <= 0 {
			delete(m, item)
		}
	}
}

// Size returns the total number of units in m.
func (m Multiset) Size() int {
	return lo.Sum(lo.Values(m))
}

// Items returns the item codes of m in sorted order.
func (m Multiset) Items() []string {
	items := lo.Keys(m)
	slices.Sort(items)
	return items
}

// DealKind identifies the shape of a deal.
type DealKind string

const (
	// KindBundle is "nX for p": n units of X for a fixed price.
	KindBundle DealKind = "bundle"
	// KindFree is "nX get one Y free": n units of X at list price plus one Y.
	KindFree DealKind = "free"
)

// Deal is a parsed promotion. Deals are immutable once returned by ParseDeal.
type Deal struct {
	Text         string
	Kind         DealKind
	Item         string
	Requirements Multiset
	Cost         int
	Saving       int
}

// RejectedDeal records a deal that was dropped while building a Pricer.
type RejectedDeal struct {
	Item string
	Text string
	Err  error
}

// AppliedDeal summarises how often a deal fired during one evaluation.
type AppliedDeal struct {
	Text     string
	Item     string
	Kind     DealKind
	Count    int
	Subtotal int
}

// LineItem is an item priced at list rate after deals were exhausted.
type LineItem struct {
	Item      string
	Quantity  int
	UnitPrice int
	Subtotal  int
}

// Receipt is the result of pricing a basket.
type Receipt struct {
	Total    int
	Deals    []AppliedDeal
	Leftover []LineItem
}
