package generator

import (
	"strings"
	"testing"
)

func TestTextWordCountAndDeterminism(t *testing.T) {
	words := []string{"alpha", "beta", "gamma"}
	opts := Options{Words: 12}
	a := New(7).Text(words, opts)
	b := New(7).Text(words, opts)
	if a != b {
		t.Fatalf("same seed must produce the same text")
	}
	if got := len(strings.Fields(a)); got != 12 {
		t.Fatalf("expected 12 words, got %d", got)
	}
}

func TestTextCapsAndPunct(t *testing.T) {
	out := New(1).Text([]string{"word"}, Options{Words: 5, CapsPct: 1, PunctPct: 1, PunctSet: []rune{'!'}})
	for _, w := range strings.Fields(out) {
		if w != "Word!" {
			t.Fatalf("expected Word!, got %q", w)
		}
	}
}

func TestTextWeakBias(t *testing.T) {
	words := []string{"aaaa", "zzzz"}
	weak := map[rune]struct{}{'z': {}}
	out := New(3).Text(words, Options{Words: 200, Weak: weak, Factor: 50})
	z := strings.Count(out, "zzzz")
	if z < 150 {
		t.Fatalf("expected weak words to dominate, got %d of 200", z)
	}
}

func TestTextEmpty(t *testing.T) {
	if out := New(1).Text(nil, Options{Words: 3}); out != "" {
		t.Fatalf("expected empty text, got %q", out)
	}
}
