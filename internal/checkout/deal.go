package checkout

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var (
	freeDealPattern   = regexp.MustCompile(`(?i)^(\S+) get one (\S+) free$`)
	bundleDealPattern = regexp.MustCompile(`(?i)^(\S+) for (\S+)$`)
	pricePattern      = regexp.MustCompile(`^\d+$`)
)

// ParseDeal parses a deal description against prices.
//
// Two forms are recognised:
//
//	"2E get one B free"  buy 2 E at list price and receive one B for free
//	"3A for 130"         buy 3 A for a fixed price of 130
func ParseDeal(text string, prices PriceList) (Deal, error) {
	normalized := strings.Join(strings.Fields(text), " ")

	if match := freeDealPattern.FindStringSubmatch(normalized); match != nil {
		return parseFreeDeal(normalized, match[1], match[2], prices)
	}
	if match := bundleDealPattern.FindStringSubmatch(normalized); match != nil {
		return parseBundleDeal(normalized, match[1], match[2], prices)
	}
	return Deal{}, fmt.Errorf("%w: %q", ErrInvalidDeal, text)
}

func parseFreeDeal(text, paid, free string, prices PriceList) (Deal, error) {
	x, err := ParseSKU(paid)
	if err != nil {
		return Deal{}, fmt.Errorf("%w: %q: %w", ErrInvalidDeal, text, err)
	}
	y, err := ParseSKU(free)
	if err != nil || y.Counted {
		return Deal{}, fmt.Errorf("%w: %q: free item must be a single item code", ErrInvalidDeal, text)
	}

	xPrice, ok := prices.Price(x.Item)
	if !ok {
		return Deal{}, fmt.Errorf("%w: %q in deal %q", ErrUnknownItem, x.Item, text)
	}
	yPrice, ok := prices.Price(y.Item)
	if !ok {
		return Deal{}, fmt.Errorf("%w: %q in deal %q", ErrUnknownItem, y.Item, text)
	}

	requirements, err := AggregateRequirements(paid, free)
	if err != nil {
		return Deal{}, fmt.Errorf("%w: %q: %w", ErrInvalidDeal, text, err)
	}

	cost, ok := mulInt(x.Quantity, xPrice)
	if !ok {
		return Deal{}, fmt.Errorf("%w: %q: %w", ErrInvalidDeal, text, ErrOverflow)
	}

	return Deal{
		Text:         text,
		Kind:         KindFree,
		Item:         x.Item,
		Requirements: requirements,
		Cost:         cost,
		Saving:       yPrice,
	}, nil
}

func parseBundleDeal(text, bundle, rawPrice string, prices PriceList) (Deal, error) {
	x, err := ParseSKU(bundle)
	if err != nil {
		return Deal{}, fmt.Errorf("%w: %q: %w", ErrInvalidDeal, text, err)
	}
	if !pricePattern.MatchString(rawPrice) {
		return Deal{}, fmt.Errorf("%w: %q: price must be a non-negative integer", ErrInvalidDeal, text)
	}
	price, err := strconv.Atoi(rawPrice)
	if err != nil {
		return Deal{}, fmt.Errorf("%w: %q: %w", ErrInvalidDeal, text, err)
	}

	unit, ok := prices.Price(x.Item)
	if !ok {
		return Deal{}, fmt.Errorf("%w: %q in deal %q", ErrUnknownItem, x.Item, text)
	}

	listPrice, ok := mulInt(x.Quantity, unit)
	if !ok {
		return Deal{}, fmt.Errorf("%w: %q: %w", ErrInvalidDeal, text, ErrOverflow)
	}

	return Deal{
		Text:         text,
		Kind:         KindBundle,
		Item:         x.Item,
		Requirements: Multiset{x.Item: x.Quantity},
		Cost:         price,
		Saving:       listPrice - price,
	}, nil
}

// AggregateRequirements sums SKU tokens into a multiset, so that
// ("2E", "E") yields {E: 3}.
func AggregateRequirements(tokens ...string) (Multiset, error) {
	out := make(Multiset, len(tokens))
	for _, token := range tokens {
		sku, err := ParseSKU(token)
		if err != nil {
			return nil, err
		}
		qty, ok := addInt(out[sku.Item], sku.Quantity)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrOverflow, sku.Item)
		}
		out[sku.Item] = qty
	}
	return out, nil
}

// ParseDeals parses the raw deal descriptions grouped by the item they are
// listed under. Deals that fail to parse, or that primarily discount a
// different item than their group, are returned as rejected rather than
// failing the whole catalog. Output order follows sorted item codes.
func ParseDeals(prices PriceList, grouped map[string][]string) ([]Deal, []RejectedDeal) {
	items := lo.Keys(grouped)
	slices.Sort(items)

	var (
		deals    []Deal
		rejected []RejectedDeal
		seen     = make(map[string]struct{})
	)
	for _, item := range items {
		for _, text := range grouped[item] {
			if strings.TrimSpace(text) == "" {
				continue
			}
			deal, err := ParseDeal(text, prices)
			if err == nil && deal.Item != item {
				err = fmt.Errorf("%w: %q listed under %q", ErrDealItemMismatch, deal.Text, item)
			}
			if err != nil {
				rejected = append(rejected, RejectedDeal{Item: item, Text: text, Err: err})
				continue
			}
			if _, dup := seen[deal.Text]; dup {
				continue
			}
			seen[deal.Text] = struct{}{}
			deals = append(deals, deal)
		}
	}
	return deals, rejected
}
