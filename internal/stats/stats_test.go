package stats

import (
	"testing"

	"github.com/verte-zerg/typecert/internal/model"
)

func TestSummarize(t *testing.T) {
	results := []model.ResultRecord{
		{WPM: 30, Accuracy: 95},
		{WPM: 40, Accuracy: 89},
		{WPM: 20, Accuracy: 90},
	}
	s := Summarize(results)
	if s.Count != 3 || s.BestWPM != 40 || s.AvgWPM != 30 || s.Eligible != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if empty := Summarize(nil); empty.Count != 0 {
		t.Fatalf("expected zero summary")
	}
}

func TestCharStatsFor(t *testing.T) {
	ref := []string{"a", "b", " ", "a"}
	typed := []string{"a", "x", "y", "b"}
	got := CharStatsFor(ref, typed)
	if len(got) != 2 {
		t.Fatalf("expected 2 chars, got %+v", got)
	}
	if got[0] != (model.CharStats{Char: "a", Correct: 1, Incorrect: 1}) {
		t.Fatalf("unexpected stats for a: %+v", got[0])
	}
	if got[1] != (model.CharStats{Char: "b", Correct: 0, Incorrect: 1}) {
		t.Fatalf("unexpected stats for b: %+v", got[1])
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %.1f, got %.1f", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got[0] != ' ' || got[1] != '@' {
		t.Fatalf("expected min and max glyphs, got %q", got)
	}
}

func TestSelectWeakChars(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "a", Correct: 9, Incorrect: 1},
		{Char: "b", Correct: 1, Incorrect: 1},
		{Char: "c", Correct: 5, Incorrect: 0},
	}
	weak := SelectWeakChars(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak chars, got %d", len(weak))
	}
	if _, ok := weak['b']; !ok {
		t.Fatalf("expected b to be weak")
	}
	if _, ok := weak['c']; ok {
		t.Fatalf("c is perfect and must not be selected")
	}
}

func TestSelectWeakCharsRanking(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "x", Correct: 1, Incorrect: 1},
		{Char: "y", Correct: 40, Incorrect: 40},
		{Char: "z", Correct: 0, Incorrect: 1},
		{Char: " ", Correct: 0, Incorrect: 9},
		{Char: "q", Correct: 0, Incorrect: 0},
	}
	if weak := SelectWeakChars(aggs, 1); len(weak) != 1 {
		t.Fatalf("expected 1 weak char, got %v", weak)
	} else if _, ok := weak['z']; !ok {
		t.Fatalf("expected z to rank first, got %v", weak)
	}

	weak := SelectWeakChars(aggs, 2)
	if _, ok := weak['y']; !ok {
		t.Fatalf("equal rates must prefer the more typed y, got %v", weak)
	}
	if _, ok := weak['x']; ok {
		t.Fatalf("x must lose the tie to y, got %v", weak)
	}

	all := SelectWeakChars(aggs, 0)
	if len(all) != 3 {
		t.Fatalf("expected x, y, z only, got %v", all)
	}
	if _, ok := all[' ']; ok {
		t.Fatalf("whitespace must not be selected")
	}
}

func TestSelectWeakCharsEmpty(t *testing.T) {
	if weak := SelectWeakChars(nil, 3); weak == nil || len(weak) != 0 {
		t.Fatalf("expected empty non-nil set, got %v", weak)
	}
}
