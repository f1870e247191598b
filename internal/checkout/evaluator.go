package checkout

import "fmt"

// DefaultApplicationCap bounds how many times a single deal is applied to one basket.
const DefaultApplicationCap = 10

// EvaluateOption configures Evaluate.
type EvaluateOption func(*evaluateConfig)

type evaluateConfig struct {
	applicationCap int
}

// WithApplicationCap overrides the per-deal application cap. Values <= 0 are ignored.
func WithApplicationCap(limit int) EvaluateOption {
	return func(cfg *evaluateConfig) {
		if limit > 0 {
			cfg.applicationCap = limit
		}
	}
}

// Evaluate prices basket by applying ranked deals greedily, highest saving
// first, and charging list price for whatever is left. A deal is applied
// only when the basket satisfies all of its requirements. The result is not
// guaranteed to be the cheapest possible; see EvaluateOptimal.
func Evaluate(basket Multiset, ranked []Deal, prices PriceList, opts ...EvaluateOption) (Receipt, error) {
	cfg := evaluateConfig{applicationCap: DefaultApplicationCap}
	for _, opt := range opts {
		opt(&cfg)
	}

	if basket.Size() == 0 {
		return Receipt{}, nil
	}

	remaining := basket.Clone()
	var receipt Receipt

	for _, deal := range ranked {
		if len(deal.Requirements) == 0 {
			continue
		}
		applied := 0
		for applied < cfg.applicationCap && remaining.Contains(deal.Requirements) {
			remaining.Subtract(deal.Requirements)
			applied++
		}
		if applied == 0 {
			continue
		}
		subtotal, ok := mulInt(applied, deal.Cost)
		if ok {
			receipt.Total, ok = addInt(receipt.Total, subtotal)
		}
		if !ok {
			return Receipt{}, fmt.Errorf("%w: %d applications of %q", ErrOverflow, applied, deal.Text)
		}
		receipt.Deals = append(receipt.Deals, AppliedDeal{
			Text:     deal.Text,
			Item:     deal.Item,
			Kind:     deal.Kind,
			Count:    applied,
			Subtotal: subtotal,
		})
	}

	leftover, total, err := priceAtList(remaining, prices)
	if err != nil {
		return Receipt{}, err
	}
	var ok bool
	if receipt.Total, ok = addInt(receipt.Total, total); !ok {
		return Receipt{}, fmt.Errorf("%w: basket total", ErrOverflow)
	}
	receipt.Leftover = leftover

	return receipt, nil
}

// priceAtList charges list price for every item in basket, in sorted item order.
// It fails with ErrOverflow when a subtotal or the total does not fit in an int.
func priceAtList(basket Multiset, prices PriceList) ([]LineItem, int, error) {
	var (
		lines []LineItem
		total int
	)
	for _, item := range basket.Items() {
		qty := basket[item]
		if qty <= 0 {
			continue
		}
		price, ok := prices.Price(item)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownItem, item)
		}
		subtotal, ok := mulInt(qty, price)
		if ok {
			total, ok = addInt(total, subtotal)
		}
		if !ok {
			return nil, 0, fmt.Errorf("%w: %d x %q at %d", ErrOverflow, qty, item, price)
		}
		lines = append(lines, LineItem{
			Item:      item,
			Quantity:  qty,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
	}
	return lines, total, nil
}
