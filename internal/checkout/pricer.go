package checkout

import "maps"

// Pricer prices baskets against one catalog. Deals are parsed and ranked
// once at construction; a Pricer is immutable and safe for concurrent use.
type Pricer struct {
	prices   PriceList
	ranked   []Deal
	rejected []RejectedDeal
	opts     []EvaluateOption
}

// NewPricer parses the grouped deal descriptions and ranks them by saving.
// Deals that cannot be parsed are dropped and reported by Rejected.
func NewPricer(prices PriceList, deals map[string][]string, opts ...EvaluateOption) *Pricer {
	own := maps.Clone(prices)
	if own == nil {
		own = PriceList{}
	}
	parsed, rejected := ParseDeals(own, deals)
	return &Pricer{
		prices:   own,
		ranked:   Rank(parsed),
		rejected: rejected,
		opts:     opts,
	}
}

// Total prices basket with the greedy evaluator.
func (p *Pricer) Total(basket string) (Receipt, error) {
	items, err := ParseBasket(basket, p.prices)
	if err != nil {
		return Receipt{}, err
	}
	return Evaluate(items, p.ranked, p.prices, p.opts...)
}

// Optimal prices basket with the exhaustive evaluator.
func (p *Pricer) Optimal(basket string) (Receipt, error) {
	items, err := ParseBasket(basket, p.prices)
	if err != nil {
		return Receipt{}, err
	}
	return EvaluateOptimal(items, p.ranked, p.prices)
}

// Checkout returns the greedy total for basket, or InvalidTotal when the
// basket contains a malformed token or an unknown item.
func (p *Pricer) Checkout(basket string) int {
	receipt, err := p.Total(basket)
	if err != nil {
		return InvalidTotal
	}
	return receipt.Total
}

// Deals returns the accepted deals in the order they are applied.
func (p *Pricer) Deals() []Deal {
	out := make([]Deal, len(p.ranked))
	copy(out, p.ranked)
	return out
}

// Rejected returns the deals that were dropped while building the Pricer.
func (p *Pricer) Rejected() []RejectedDeal {
	out := make([]RejectedDeal, len(p.rejected))
	copy(out, p.rejected)
	return out
}

// Prices returns a copy of the price list.
func (p *Pricer) Prices() PriceList {
	return maps.Clone(p.prices)
}
