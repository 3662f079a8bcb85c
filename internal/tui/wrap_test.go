package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/typecert/internal/assess"
)

func marksFor(ref, typed string) ([]string, []assess.Mark) {
	units := strings.Split(ref, "")
	got := strings.Split(typed, "")
	if typed == "" {
		got = nil
	}
	marks := make([]assess.Mark, len(units))
	for i := range units {
		switch {
		case i < len(got) && got[i] == units[i]:
			marks[i] = assess.MarkCorrect
		case i < len(got):
			marks[i] = assess.MarkIncorrect
		case i == len(got):
			marks[i] = assess.MarkCursor
		}
	}
	return units, marks
}

func TestBuildStyledRunesCursor(t *testing.T) {
	units, marks := marksFor("ab", "a")
	runes := buildStyledRunes(units, marks)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected underlined cursor in current word")
	}
}

func TestBuildStyledRunesNoCursorWhenComplete(t *testing.T) {
	units, marks := marksFor("a", "a")
	runes := buildStyledRunes(units, marks)
	if len(runes) != 1 {
		t.Fatalf("expected 1 rune, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed rune")
	}
}

func TestBuildStyledRunesKeepsReferenceOnMistype(t *testing.T) {
	units, marks := marksFor("abc", "ax")
	runes := buildStyledRunes(units, marks)
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected reference char in incorrect style")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	units, marks := marksFor("one two", "o")
	runes := buildStyledRunes(units, marks)
	if runes[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	units, marks := marksFor("a b", "ax")
	runes := buildStyledRunes(units, marks)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("•") {
		t.Fatalf("expected dot for wrong space")
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	units, marks := marksFor("aa bb cc", "")
	out := wrapStyledRunes(buildStyledRunes(units, marks), 5)
	if got := strings.Count(out, "\n"); got != 1 {
		t.Fatalf("expected 1 line break, got %d in %q", got, out)
	}
}

func TestWrapStyledRunesWideCharacters(t *testing.T) {
	runes := buildStyledRunes([]string{"漢", "字", "漢"}, []assess.Mark{assess.MarkPending, assess.MarkPending, assess.MarkPending})
	if runes[0].width != 2 {
		t.Fatalf("expected width 2, got %d", runes[0].width)
	}
	out := wrapStyledRunes(runes, 4)
	if got := strings.Count(out, "\n"); got != 1 {
		t.Fatalf("expected 1 line break, got %d", got)
	}
}
