package checkout

import (
	"fmt"
	"strings"
)

// ParseBasket turns a basket string into a multiset of item codes.
//
// The basket is a comma separated list of SKU tokens such as "3A,2B,C".
// A token without a count whose characters are all single-character catalog
// items is read as concatenated codes, so "AAAB" is three A and one B.
// A blank basket is empty. Baskets whose unit count does not fit in an int
// are rejected as invalid.
func ParseBasket(basket string, prices PriceList) (Multiset, error) {
	out := make(Multiset)
	if strings.TrimSpace(basket) == "" {
		return out, nil
	}

	size := 0
	add := func(item string, qty int) error {
		var ok bool
		if size, ok = addInt(size, qty); !ok {
			return fmt.Errorf("%w: %w: basket %q", ErrInvalidSKU, ErrOverflow, basket)
		}
		out[item] += qty
		return nil
	}

	for _, token := range strings.Split(basket, ",") {
		sku, err := ParseSKU(token)
		if err != nil {
			return nil, err
		}
		if _, ok := prices.Price(sku.Item); ok {
			if err := add(sku.Item, sku.Quantity); err != nil {
				return nil, err
			}
			continue
		}
		if sku.Counted {
			return nil, fmt.Errorf("%w: %q", ErrUnknownItem, sku.Item)
		}
		parsed, err := splitConcatenated(sku.Item, prices)
		if err != nil {
			return nil, err
		}
		for _, item := range parsed.Items() {
			if err := add(item, parsed[item]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func splitConcatenated(codes string, prices PriceList) (Multiset, error) {
	parsed := make(Multiset)
	for _, r := range codes {
		item := string(r)
		if _, ok := prices.Price(item); !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownItem, item, codes)
		}
		parsed[item]++
	}
	return parsed, nil
}
