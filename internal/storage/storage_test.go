package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/checkout/internal/catalog"
	"github.com/eugenenazirov/checkout/internal/checkout"
)

func TestNewMemoryStorageReturnsDefaultCatalog(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	got, err := store.GetCatalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != len(catalog.Default().Items) {
		t.Fatalf("expected default catalog, got %v", got)
	}

	// ensure mutation safety
	got.Items[0].Price = 999
	again, err := store.GetCatalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Items[0].Price == 999 {
		t.Fatalf("expected defensive copy, got %v", again)
	}

	pricer, err := store.GetPricer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pricer.Checkout("AAA"); got != 130 {
		t.Fatalf("expected 130, got %d", got)
	}
}

func TestSetCatalogUpdatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	cat := catalog.Catalog{Items: []catalog.Item{
		{SKU: "X", Price: 7, Deals: []string{"2X for 10"}},
	}}
	if err := store.SetCatalog(cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cat.Items[0].Price = 1000

	pricer, err := store.GetPricer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pricer.Checkout("XXX"); got != 17 {
		t.Fatalf("expected 17, got %d", got)
	}
	if got := pricer.Checkout("A"); got != checkout.InvalidTotal {
		t.Fatalf("expected old items to be gone, got %d", got)
	}
}

func TestSetCatalogRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []catalog.Catalog{
		{},
		{Items: []catalog.Item{{SKU: "", Price: 1}}},
		{Items: []catalog.Item{{SKU: "A", Price: -1}}},
		{Items: []catalog.Item{{SKU: "A", Price: 1}, {SKU: "A", Price: 2}}},
		{Items: []catalog.Item{{SKU: "3A", Price: 1}}},
	}

	for idx, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.SetCatalog(tc); !errors.Is(err, catalog.ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog for %v, got %v", tc, err)
			}
		})
	}
}

func TestSetCatalogLogsDroppedDeals(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	store := NewMemoryStorage(WithLogger(zap.New(core)))

	err := store.SetCatalog(catalog.Catalog{Items: []catalog.Item{
		{SKU: "A", Price: 5, Deals: []string{"3A for free", "2Z for 1"}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := logs.FilterMessage("deal dropped").Len(); got != 2 {
		t.Fatalf("expected 2 dropped deal warnings, got %d", got)
	}
}

func TestWithEvaluateOptionsAppliesToPricer(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage(WithEvaluateOptions(checkout.WithApplicationCap(1)))
	pricer, err := store.GetPricer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pricer.Checkout("10A"); got != 200+130+100 {
		t.Fatalf("expected capped total 430, got %d", got)
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			cat := catalog.Catalog{Items: []catalog.Item{{SKU: "A", Price: 50 + offset}}}
			if err := store.SetCatalog(cat); err != nil {
				t.Errorf("SetCatalog failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			pricer, err := store.GetPricer()
			if err != nil {
				t.Errorf("GetPricer failed: %v", err)
				return
			}
			if got := pricer.Checkout("A"); got < 50 {
				t.Errorf("unexpected total %d", got)
			}
		}()
	}

	wg.Wait()

	// final read should succeed
	if _, err := store.GetCatalog(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
