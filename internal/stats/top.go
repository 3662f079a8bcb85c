package stats

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/verte-zerg/typecert/internal/model"
)

// TopCharsByFrequency returns the n most typed characters, ties broken by
// character order.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := slices.Clone(aggs)
	slices.SortFunc(sorted, func(a, b model.CharAggregate) int {
		if c := cmp.Compare(b.Correct+b.Incorrect, a.Correct+a.Incorrect); c != 0 {
			return c
		}
		return cmp.Compare(a.Char, b.Char)
	})
	return lo.Map(sorted[:min(n, len(sorted))], func(a model.CharAggregate, _ int) string { return a.Char })
}
