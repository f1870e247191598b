package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/eugenenazirov/checkout/internal/checkout"
)

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Item is one catalog row: an item code, its unit price and the raw deal
// descriptions listed against it.
type Item struct {
	SKU   string   `yaml:"sku" json:"sku" validate:"required,max=32"`
	Price int      `yaml:"price" json:"price" validate:"gte=0"`
	Deals []string `yaml:"deals,omitempty" json:"deals,omitempty" validate:"omitempty,dive,max=256"`
}

// Catalog is the set of items a checkout prices against.
type Catalog struct {
	Items []Item `yaml:"items" json:"items" validate:"required,min=1,dive"`
}

var defaultItems = []Item{
	{SKU: "A", Price: 50, Deals: []string{"3A for 130", "5A for 200"}},
	{SKU: "B", Price: 30, Deals: []string{"2B for 45"}},
	{SKU: "C", Price: 20},
	{SKU: "D", Price: 15},
	{SKU: "E", Price: 40, Deals: []string{"2E get one B free"}},
	{SKU: "F", Price: 10, Deals: []string{"2F get one F free"}},
}

// Default returns a copy of the built-in catalog.
func Default() Catalog {
	return Catalog{Items: defaultItems}.Clone()
}

// Validate checks field constraints, item code syntax and uniqueness.
func (c Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	for _, item := range c.Items {
		sku, err := checkout.ParseSKU(item.SKU)
		if err != nil || sku.Counted || sku.Item != item.SKU {
			return fmt.Errorf("%w: item code %q must not contain digits or whitespace", ErrInvalidCatalog, item.SKU)
		}
		if strings.Contains(item.SKU, ",") {
			return fmt.Errorf("%w: item code %q must not contain commas", ErrInvalidCatalog, item.SKU)
		}
	}

	dupes := lo.FindDuplicatesBy(c.Items, func(item Item) string { return item.SKU })
	if len(dupes) > 0 {
		return fmt.Errorf("%w: duplicate item code %q", ErrInvalidCatalog, dupes[0].SKU)
	}
	return nil
}

// Prices returns the unit price of every item.
func (c Catalog) Prices() checkout.PriceList {
	return lo.SliceToMap(c.Items, func(item Item) (string, int) {
		return item.SKU, item.Price
	})
}

// Deals returns the raw deal descriptions grouped by the item they are listed under.
func (c Catalog) Deals() map[string][]string {
	withDeals := lo.Filter(c.Items, func(item Item, _ int) bool { return len(item.Deals) > 0 })
	return lo.SliceToMap(withDeals, func(item Item) (string, []string) {
		return item.SKU, append([]string(nil), item.Deals...)
	})
}

// Pricer builds a checkout.Pricer for the catalog.
func (c Catalog) Pricer(opts ...checkout.EvaluateOption) *checkout.Pricer {
	return checkout.NewPricer(c.Prices(), c.Deals(), opts...)
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	items := make([]Item, len(c.Items))
	for i, item := range c.Items {
		items[i] = Item{
			SKU:   item.SKU,
			Price: item.Price,
			Deals: append([]string(nil), item.Deals...),
		}
	}
	return Catalog{Items: items}
}
