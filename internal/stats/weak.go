package stats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/typecert/internal/model"
)

// SelectWeakChars picks up to top characters with the highest smoothed miss
// rate. Characters never missed and whitespace are not candidates. Equal
// rates rank the more often typed character first. top <= 0 keeps every
// candidate.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	candidates := lo.Filter(aggs, func(a model.CharAggregate, _ int) bool {
		return a.Incorrect > 0 && strings.TrimSpace(a.Char) != ""
	})
	slices.SortFunc(candidates, func(a, b model.CharAggregate) int {
		if c := cmp.Compare(missRate(b), missRate(a)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Correct+b.Incorrect, a.Correct+a.Incorrect); c != 0 {
			return c
		}
		return cmp.Compare(a.Char, b.Char)
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	weakSet := make(map[rune]struct{}, len(candidates))
	for _, c := range candidates {
		weakSet[[]rune(c.Char)[0]] = struct{}{}
	}
	return weakSet
}

// missRate is the Laplace-smoothed share of misses, so a single slip on a
// rarely typed character does not outrank a steady weakness.
func missRate(agg model.CharAggregate) float64 {
	return float64(agg.Incorrect+1) / float64(agg.Correct+agg.Incorrect+2)
}

func accuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
