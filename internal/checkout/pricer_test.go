package checkout

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	defaultPrices = PriceList{"A": 50, "B": 30, "C": 20, "D": 15, "E": 40, "F": 10}
	defaultDeals  = map[string][]string{
		"A": {"3A for 130", "5A for 200"},
		"B": {"2B for 45"},
		"E": {"2E get one B free"},
		"F": {"2F get one F free"},
	}
)

func TestPricerCheckout(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(defaultPrices, defaultDeals)

	tests := []struct {
		basket string
		want   int
	}{
		{basket: "", want: 0},
		{basket: "   ", want: 0},
		{basket: "A", want: 50},
		{basket: "B", want: 30},
		{basket: "C", want: 20},
		{basket: "D", want: 15},
		{basket: "AA", want: 100},
		{basket: "AAA", want: 130},
		{basket: "AAAA", want: 180},
		{basket: "AAAAA", want: 200},
		{basket: "AAAAAA", want: 250},
		{basket: "AAAAAAAA", want: 330},
		{basket: "AB", want: 80},
		{basket: "ABCD", want: 115},
		{basket: "A,B,C,D", want: 115},
		{basket: "AAAABBBC", want: 180 + 75 + 20},
		{basket: "4A,3B,C", want: 180 + 75 + 20},
		{basket: "EEB", want: 80},
		{basket: "2E, B", want: 80},
		{basket: "FFF", want: 20},
		{basket: "FF", want: 20},
		{basket: "Z", want: InvalidTotal},
		{basket: "A,Z", want: InvalidTotal},
		{basket: "AAZ", want: InvalidTotal},
		{basket: "3A3", want: InvalidTotal},
		{basket: "A,,B", want: InvalidTotal},
		{basket: "a", want: InvalidTotal},
		{basket: "9223372036854775808A", want: InvalidTotal},
		{basket: "9223372036854775807A", want: InvalidTotal},
		{basket: "9223372036854775807A,1A", want: InvalidTotal},
		{basket: "9223372036854775807A,1B", want: InvalidTotal},
		{basket: "200000000000000000A", want: InvalidTotal},
		{basket: "400000000000000000B", want: InvalidTotal},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.basket, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, pricer.Checkout(tc.basket))
		})
	}
}

func TestPricerDropsMalformedDeals(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(PriceList{"A": 50}, map[string][]string{
		"A": {"3A for lots", "3A for 130"},
	})

	require.Len(t, pricer.Deals(), 1)
	require.Len(t, pricer.Rejected(), 1)
	require.ErrorIs(t, pricer.Rejected()[0].Err, ErrInvalidDeal)
	require.Equal(t, 130, pricer.Checkout("AAA"))
}

func TestPricerRejectsOverflowingQuantities(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(defaultPrices, defaultDeals)

	_, err := pricer.Total("9223372036854775807A,1B")
	require.ErrorIs(t, err, ErrInvalidSKU)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = pricer.Total("200000000000000000A")
	require.ErrorIs(t, err, ErrOverflow)

	_, err = pricer.Optimal("9223372036854775807A")
	require.Error(t, err)

	receipt, err := pricer.Total("1000000000A")
	require.NoError(t, err)
	require.Positive(t, receipt.Total)
}

func TestPricerRejectsOverflowingDeals(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(PriceList{"A": math.MaxInt / 2}, map[string][]string{
		"A": {"3A for 10", "3A get one A free", "5A for 10"},
	})

	require.Len(t, pricer.Deals(), 0)
	require.Len(t, pricer.Rejected(), 3)
	for _, rejected := range pricer.Rejected() {
		require.ErrorIs(t, rejected.Err, ErrOverflow, rejected.Text)
	}
}

func TestPricerOptimalDeepBasket(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(PriceList{"A": 50}, map[string][]string{"A": {"3A for 130", "5A for 200"}})

	_, err := pricer.Optimal("99999999A")
	require.ErrorIs(t, err, ErrSearchTooLarge)

	receipt, err := pricer.Total("99999999A")
	require.NoError(t, err)
	require.Equal(t, 10*200+10*130+(99999999-80)*50, receipt.Total)
}

func TestPricerWithoutCatalog(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(nil, nil)
	require.Equal(t, 0, pricer.Checkout(""))
	require.Equal(t, InvalidTotal, pricer.Checkout("A"))
}

func TestPricerIsolatedFromCallerMaps(t *testing.T) {
	t.Parallel()

	prices := PriceList{"A": 50}
	pricer := NewPricer(prices, nil)
	prices["A"] = 1

	require.Equal(t, 50, pricer.Checkout("A"))

	copied := pricer.Prices()
	copied["A"] = 2
	require.Equal(t, 50, pricer.Checkout("A"))
}

func TestPricerTotalReceipt(t *testing.T) {
	t.Parallel()

	pricer := NewPricer(defaultPrices, defaultDeals)

	receipt, err := pricer.Total("8A,B,C")
	require.NoError(t, err)
	require.Equal(t, 330+30+20, receipt.Total)
	require.Equal(t, []AppliedDeal{
		{Text: "5A for 200", Item: "A", Kind: KindBundle, Count: 1, Subtotal: 200},
		{Text: "3A for 130", Item: "A", Kind: KindBundle, Count: 1, Subtotal: 130},
	}, receipt.Deals)
	require.Equal(t, []LineItem{
		{Item: "B", Quantity: 1, UnitPrice: 30, Subtotal: 30},
		{Item: "C", Quantity: 1, UnitPrice: 20, Subtotal: 20},
	}, receipt.Leftover)

	_, err = pricer.Total("2Z")
	require.ErrorIs(t, err, ErrUnknownItem)
	_, err = pricer.Optimal("3A3")
	require.ErrorIs(t, err, ErrInvalidSKU)
}

func TestPricerConcurrentCheckout(t *testing.T) {
	pricer := NewPricer(defaultPrices, defaultDeals)
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := pricer.Checkout("AAAABBBC"); got != 275 {
				t.Errorf("expected 275, got %d", got)
			}
		}()
	}

	wg.Wait()
}
