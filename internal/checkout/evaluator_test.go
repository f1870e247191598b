package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustDeal(t *testing.T, text string, prices PriceList) Deal {
	t.Helper()
	deal, err := ParseDeal(text, prices)
	require.NoError(t, err)
	return deal
}

func TestEvaluateEmptyBasket(t *testing.T) {
	t.Parallel()

	got, err := Evaluate(Multiset{}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, Receipt{}, got)
}

func TestEvaluateWithoutDeals(t *testing.T) {
	t.Parallel()

	got, err := Evaluate(Multiset{"A": 2, "C": 3, "D": 1}, nil, testPrices)
	require.NoError(t, err)
	require.Equal(t, 2*50+3*20+15, got.Total)
	require.Empty(t, got.Deals)
	require.Equal(t, []LineItem{
		{Item: "A", Quantity: 2, UnitPrice: 50, Subtotal: 100},
		{Item: "C", Quantity: 3, UnitPrice: 20, Subtotal: 60},
		{Item: "D", Quantity: 1, UnitPrice: 15, Subtotal: 15},
	}, got.Leftover)
}

func TestEvaluateBundle(t *testing.T) {
	t.Parallel()

	deals := []Deal{mustDeal(t, "3A for 130", testPrices)}

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "Exact", count: 3, want: 130},
		{name: "Double", count: 6, want: 260},
		{name: "OneOver", count: 4, want: 180},
		{name: "Under", count: 2, want: 100},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(Multiset{"A": tc.count}, deals, testPrices)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.Total)
		})
	}
}

func TestEvaluateDoesNotPartiallyApplyDeal(t *testing.T) {
	t.Parallel()

	prices := PriceList{"F": 10}
	deals := []Deal{mustDeal(t, "2F get one F free", prices)}

	got, err := Evaluate(Multiset{"F": 2}, deals, prices)
	require.NoError(t, err)
	require.Equal(t, 20, got.Total)
	require.Empty(t, got.Deals)

	got, err = Evaluate(Multiset{"F": 3}, deals, prices)
	require.NoError(t, err)
	require.Equal(t, 20, got.Total)
	require.Equal(t, []AppliedDeal{{Text: "2F get one F free", Item: "F", Kind: KindFree, Count: 1, Subtotal: 20}}, got.Deals)
}

func TestEvaluateDoesNotMutateBasket(t *testing.T) {
	t.Parallel()

	basket := Multiset{"A": 3}
	_, err := Evaluate(basket, []Deal{mustDeal(t, "3A for 130", testPrices)}, testPrices)
	require.NoError(t, err)
	require.Equal(t, Multiset{"A": 3}, basket)
}

func TestEvaluateApplicationCap(t *testing.T) {
	t.Parallel()

	deals := []Deal{mustDeal(t, "A for 0", testPrices)}

	got, err := Evaluate(Multiset{"A": 12}, deals, testPrices)
	require.NoError(t, err)
	require.Equal(t, 2*50, got.Total)
	require.Equal(t, DefaultApplicationCap, got.Deals[0].Count)

	got, err = Evaluate(Multiset{"A": 12}, deals, testPrices, WithApplicationCap(20))
	require.NoError(t, err)
	require.Equal(t, 0, got.Total)

	got, err = Evaluate(Multiset{"A": 12}, deals, testPrices, WithApplicationCap(0))
	require.NoError(t, err)
	require.Equal(t, DefaultApplicationCap, got.Deals[0].Count)
}

func TestEvaluateSkipsDealsWithoutRequirements(t *testing.T) {
	t.Parallel()

	got, err := Evaluate(Multiset{"A": 1}, []Deal{{Text: "empty", Cost: 1}}, testPrices)
	require.NoError(t, err)
	require.Equal(t, 50, got.Total)
}

func TestEvaluateUnknownItem(t *testing.T) {
	t.Parallel()

	got, err := Evaluate(Multiset{"A": 1, "Z": 1}, nil, testPrices)
	require.ErrorIs(t, err, ErrUnknownItem)
	require.Equal(t, Receipt{}, got)
}

func TestEvaluateGreedyIsNotOptimal(t *testing.T) {
	t.Parallel()

	prices := PriceList{"B": 30, "E": 40}
	deals := Rank([]Deal{
		mustDeal(t, "2E get one B free", prices),
		mustDeal(t, "3B for 69", prices),
		mustDeal(t, "3E for 100", prices),
	})

	got, err := Evaluate(Multiset{"B": 3, "E": 3}, deals, prices)
	require.NoError(t, err)
	require.Equal(t, 80+60+40, got.Total)
}

func BenchmarkEvaluate(b *testing.B) {
	deals, _ := ParseDeals(defaultPrices, defaultDeals)
	ranked := Rank(deals)
	basket := Multiset{"A": 40, "B": 17, "C": 3, "E": 9, "F": 21}
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(basket, ranked, defaultPrices); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
