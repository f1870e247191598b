package checkout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var skuPattern = regexp.MustCompile(`^(\d*)(\D+)$`)

// SKU is a quantity of a single item, as written in a basket or deal clause.
type SKU struct {
	Quantity int
	Item     string
	// Counted is true when the token carried an explicit quantity prefix.
	Counted bool
}

// ParseSKU splits a token such as "3A" into its quantity and item code.
// The quantity defaults to 1 when omitted.
func ParseSKU(token string) (SKU, error) {
	token = strings.TrimSpace(token)
	match := skuPattern.FindStringSubmatch(token)
	if match == nil {
		return SKU{}, fmt.Errorf("%w: %q", ErrInvalidSKU, token)
	}

	item := strings.TrimSpace(match[2])
	if item == "" || strings.ContainsAny(item, " \t") {
		return SKU{}, fmt.Errorf("%w: %q", ErrInvalidSKU, token)
	}

	sku := SKU{Quantity: 1, Item: item}
	if match[1] != "" {
		qty, err := strconv.Atoi(match[1])
		if err != nil || qty <= 0 {
			return SKU{}, fmt.Errorf("%w: %q", ErrInvalidSKU, token)
		}
		sku.Quantity = qty
		sku.Counted = true
	}
	return sku, nil
}
