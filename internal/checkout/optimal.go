package checkout

import "fmt"

const maxOptimalStates = 200_000

// EvaluateOptimal prices basket with the cheapest possible combination of
// deals. It fills a table over every sub-basket of basket, so it is far more
// expensive than Evaluate and refuses baskets whose sub-basket count exceeds
// the state budget (ErrSearchTooLarge).
func EvaluateOptimal(basket Multiset, deals []Deal, prices PriceList) (Receipt, error) {
	if basket.Size() == 0 {
		return Receipt{}, nil
	}
	if _, _, err := priceAtList(basket, prices); err != nil {
		return Receipt{}, err
	}

	space, err := newStateSpace(basket, deals, prices)
	if err != nil {
		return Receipt{}, err
	}
	dp, choice := space.solve()

	counts := make([]int, len(space.deals))
	state := space.vector(basket)
	for idx := space.size - 1; choice[idx] >= 0; {
		d := choice[idx]
		counts[d]++
		idx -= space.offsets[d]
		for i, qty := range space.requirements[d] {
			state[i] -= qty
		}
	}

	var receipt Receipt
	for i, count := range counts {
		if count == 0 {
			continue
		}
		deal := space.deals[i]
		receipt.Deals = append(receipt.Deals, AppliedDeal{
			Text:     deal.Text,
			Item:     deal.Item,
			Kind:     deal.Kind,
			Count:    count,
			Subtotal: count * deal.Cost,
		})
	}

	leftover, _, err := priceAtList(space.multiset(state), prices)
	if err != nil {
		return Receipt{}, err
	}
	receipt.Leftover = leftover
	receipt.Total = dp[space.size-1]

	return receipt, nil
}

// stateSpace numbers every sub-basket in mixed radix: item i contributes
// qty_i*strides[i] to the index, so the full basket is the last index and
// removing a deal always moves to a smaller one.
type stateSpace struct {
	items        []string
	quantities   []int
	strides      []int
	unitPrices   []int
	size         int
	deals        []Deal
	requirements [][]int
	offsets      []int
}

func newStateSpace(basket Multiset, deals []Deal, prices PriceList) (*stateSpace, error) {
	s := &stateSpace{items: basket.Items(), size: 1}
	index := make(map[string]int, len(s.items))
	for i, item := range s.items {
		qty := basket[item]
		if qty >= maxOptimalStates || qty+1 > maxOptimalStates/s.size {
			return nil, fmt.Errorf("%w: more than %d states", ErrSearchTooLarge, maxOptimalStates)
		}
		index[item] = i
		price, _ := prices.Price(item)
		s.quantities = append(s.quantities, qty)
		s.strides = append(s.strides, s.size)
		s.unitPrices = append(s.unitPrices, price)
		s.size *= qty + 1
	}

	// Deals naming an item outside the basket, or needing more than it holds, can never fire.
	for _, deal := range deals {
		req := make([]int, len(s.items))
		offset := 0
		usable := len(deal.Requirements) > 0
		for item, qty := range deal.Requirements {
			i, ok := index[item]
			if !ok || qty <= 0 || qty > s.quantities[i] {
				usable = false
				break
			}
			req[i] = qty
			offset += qty * s.strides[i]
		}
		if usable {
			s.deals = append(s.deals, deal)
			s.requirements = append(s.requirements, req)
			s.offsets = append(s.offsets, offset)
		}
	}
	return s, nil
}

// solve fills dp[idx] with the cheapest price of sub-basket idx and
// choice[idx] with the deal applied last on that path, or -1 for list price.
func (s *stateSpace) solve() (dp, choice []int) {
	dp = make([]int, s.size)
	choice = make([]int, s.size)
	state := make([]int, len(s.items))

	for idx := 0; idx < s.size; idx++ {
		if idx > 0 {
			s.increment(state)
		}

		best, bestDeal := s.listPrice(state), -1
		for d, req := range s.requirements {
			if !fitsVector(state, req) {
				continue
			}
			candidate, ok := addInt(dp[idx-s.offsets[d]], s.deals[d].Cost)
			if ok && candidate < best {
				best, bestDeal = candidate, d
			}
		}
		dp[idx] = best
		choice[idx] = bestDeal
	}
	return dp, choice
}

// increment advances state to the next sub-basket in index order.
func (s *stateSpace) increment(state []int) {
	for i := range state {
		if state[i] < s.quantities[i] {
			state[i]++
			return
		}
		state[i] = 0
	}
}

// listPrice cannot overflow: every sub-basket costs no more than the full
// basket, which priceAtList has already checked.
func (s *stateSpace) listPrice(state []int) int {
	total := 0
	for i, qty := range state {
		total += qty * s.unitPrices[i]
	}
	return total
}

func (s *stateSpace) vector(m Multiset) []int {
	out := make([]int, len(s.items))
	for i, item := range s.items {
		out[i] = m[item]
	}
	return out
}

func (s *stateSpace) multiset(state []int) Multiset {
	out := make(Multiset)
	for i, qty := range state {
		if qty > 0 {
			out[s.items[i]] = qty
		}
	}
	return out
}

func fitsVector(state, req []int) bool {
	for i, qty := range req {
		if state[i] < qty {
			return false
		}
	}
	return true
}
