// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/typecert/internal/certificate"
	"github.com/verte-zerg/typecert/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of results.
type Summary struct {
	Count       int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	Eligible    int
}

// Summarize computes a Summary over results.
func Summarize(results []model.ResultRecord) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(results)}
	s.AvgWPM = lo.MeanBy(results, func(r model.ResultRecord) float64 { return float64(r.WPM) })
	s.AvgAccuracy = lo.MeanBy(results, func(r model.ResultRecord) float64 { return float64(r.Accuracy) })
	s.BestWPM = lo.MaxBy(results, func(a, b model.ResultRecord) bool { return a.WPM > b.WPM }).WPM
	s.Eligible = lo.CountBy(results, func(r model.ResultRecord) bool { return r.Accuracy >= certificate.MinAccuracy })
	return s
}

// CharStatsFor compares a finished attempt against its reference and returns
// per-character counts keyed by the expected character. Spaces are skipped.
func CharStatsFor(reference, typed []string) []model.CharStats {
	counts := map[string]*model.CharStats{}
	for i, got := range typed {
		if i >= len(reference) {
			break
		}
		want := reference[i]
		if strings.TrimSpace(want) == "" {
			continue
		}
		entry, ok := counts[want]
		if !ok {
			entry = &model.CharStats{Char: want}
			counts[want] = entry
		}
		if got == want {
			entry.Correct++
		} else {
			entry.Incorrect++
		}
	}
	out := make([]model.CharStats, 0, len(counts))
	for _, entry := range counts {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := lo.Min(values), lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, results []model.ResultRecord) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	s := Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", s.Count),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
		fmt.Sprintf("Certificate eligible: %d", s.Eligible),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints sparkline curves for WPM and accuracy followed by the
// most recent results.
func RenderHistory(w io.Writer, results []model.ResultRecord, window, rows int) error {
	if len(results) == 0 {
		return nil
	}
	wpms := lo.Map(results, func(r model.ResultRecord, _ int) float64 { return float64(r.WPM) })
	accs := lo.Map(results, func(r model.ResultRecord, _ int) float64 { return float64(r.Accuracy) })
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "WPM      |%s|\n", Sparkline(MovingAverage(wpms, window))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy |%s|\n\n", Sparkline(MovingAverage(accs, window))); err != nil {
		return err
	}

	recent := results
	if rows > 0 && len(recent) > rows {
		recent = recent[len(recent)-rows:]
	}
	cols := []column{
		{title: "ID", right: true},
		{title: "Date"},
		{title: "Lang"},
		{title: "Level"},
		{title: "WPM", right: true},
		{title: "Accuracy", right: true},
		{title: "Time", right: true},
		{title: "Result"},
	}
	tableRows := make([][]string, 0, len(recent))
	for _, r := range recent {
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", r.ID),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Lang,
			r.Difficulty,
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%ds", r.TimeTaken),
			r.Reason,
		})
	}
	for _, line := range formatTable(cols, tableRows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharTable prints per-character aggregates, weakest first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := accuracy(sorted[i]), accuracy(sorted[j])
		if ai == aj {
			return sorted[i].Char < sorted[j].Char
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	cols := []column{
		{title: "Char"},
		{title: "Accuracy", right: true},
		{title: "Correct", right: true},
		{title: "Incorrect", right: true},
	}
	tableRows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		tableRows = append(tableRows, []string{
			agg.Char,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	for _, line := range formatTable(cols, tableRows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
