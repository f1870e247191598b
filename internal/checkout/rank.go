package checkout

import "sort"

// Rank returns deals ordered by descending saving. Deals with equal saving
// keep their input order. The input slice is left untouched.
func Rank(deals []Deal) []Deal {
	ranked := make([]Deal, len(deals))
	copy(ranked, deals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Saving > ranked[j].Saving
	})
	return ranked
}
