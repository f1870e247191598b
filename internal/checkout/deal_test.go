package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testPrices = PriceList{"A": 50, "B": 30, "C": 20, "D": 15, "E": 40}

func TestParseDeal_GetOneFree(t *testing.T) {
	t.Parallel()

	deal, err := ParseDeal("2E get one B free", testPrices)
	require.NoError(t, err)
	require.Equal(t, KindFree, deal.Kind)
	require.Equal(t, "E", deal.Item)
	require.Equal(t, Multiset{"E": 2, "B": 1}, deal.Requirements)
	require.Equal(t, 80, deal.Cost)
	require.Equal(t, 30, deal.Saving)
}

func TestParseDeal_GetOneFreeSameItem(t *testing.T) {
	t.Parallel()

	prices := PriceList{"F": 10}
	deal, err := ParseDeal("2F get one F free", prices)
	require.NoError(t, err)
	require.Equal(t, Multiset{"F": 3}, deal.Requirements)
	require.Equal(t, 20, deal.Cost)
	require.Equal(t, 10, deal.Saving)
}

func TestParseDeal_Bundle(t *testing.T) {
	t.Parallel()

	deal, err := ParseDeal("5A for 200", testPrices)
	require.NoError(t, err)
	require.Equal(t, KindBundle, deal.Kind)
	require.Equal(t, Multiset{"A": 5}, deal.Requirements)
	require.Equal(t, 200, deal.Cost)
	require.Equal(t, 50, deal.Saving)
}

func TestParseDeal_BundleWithoutQuantity(t *testing.T) {
	t.Parallel()

	deal, err := ParseDeal("A for 25", testPrices)
	require.NoError(t, err)
	require.Equal(t, Multiset{"A": 1}, deal.Requirements)
	require.Equal(t, 25, deal.Cost)
	require.Equal(t, 25, deal.Saving)
}

func TestParseDeal_NormalisesSpacing(t *testing.T) {
	t.Parallel()

	deal, err := ParseDeal("  3A   FOR 130 ", testPrices)
	require.NoError(t, err)
	require.Equal(t, "3A FOR 130", deal.Text)
	require.Equal(t, 130, deal.Cost)
}

func TestParseDeal_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text    string
		wantErr error
	}{
		{text: "2A for price of 80", wantErr: ErrInvalidDeal},
		{text: "buy two get one free", wantErr: ErrInvalidDeal},
		{text: "3A for -5", wantErr: ErrInvalidDeal},
		{text: "3A for 1.5", wantErr: ErrInvalidDeal},
		{text: "3A3 for 100", wantErr: ErrInvalidDeal},
		{text: "2E get one 2B free", wantErr: ErrInvalidDeal},
		{text: "3Z for 100", wantErr: ErrUnknownItem},
		{text: "2E get one Z free", wantErr: ErrUnknownItem},
		{text: "", wantErr: ErrInvalidDeal},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDeal(tc.text, testPrices)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAggregateRequirements(t *testing.T) {
	t.Parallel()

	got, err := AggregateRequirements("2E", "B")
	require.NoError(t, err)
	require.Equal(t, Multiset{"E": 2, "B": 1}, got)

	got, err = AggregateRequirements("2E", "E")
	require.NoError(t, err)
	require.Equal(t, Multiset{"E": 3}, got)

	_, err = AggregateRequirements("2E", "3E3")
	require.ErrorIs(t, err, ErrInvalidSKU)

	_, err = AggregateRequirements("9223372036854775807E", "E")
	require.ErrorIs(t, err, ErrOverflow)
}

func TestParseDeals(t *testing.T) {
	t.Parallel()

	grouped := map[string][]string{
		"A": {"3A for 130", "5A for 200", "3A for 130"},
		"B": {"A for 25", "2B for 45"},
		"E": {"2E get one B free", "nonsense"},
		"Z": {"2Z for 10"},
		"C": {""},
	}

	deals, rejected := ParseDeals(testPrices, grouped)

	texts := make([]string, 0, len(deals))
	for _, d := range deals {
		texts = append(texts, d.Text)
	}
	require.Equal(t, []string{"3A for 130", "5A for 200", "2B for 45", "2E get one B free"}, texts)

	require.Len(t, rejected, 3)
	require.Equal(t, "B", rejected[0].Item)
	require.ErrorIs(t, rejected[0].Err, ErrDealItemMismatch)
	require.Equal(t, "E", rejected[1].Item)
	require.ErrorIs(t, rejected[1].Err, ErrInvalidDeal)
	require.Equal(t, "Z", rejected[2].Item)
	require.ErrorIs(t, rejected[2].Err, ErrUnknownItem)
}
