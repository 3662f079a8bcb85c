// Package assess implements the typing assessment engine.
//
// A Session measures typed text against a reference under a fixed time
// budget and produces exactly one Result, either when the whole reference
// has been typed or when the countdown reaches zero. The engine does no I/O
// and never blocks: the host forwards input snapshots and clock ticks and
// reacts to the Presenter callbacks.
package assess

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// DefaultTimeLimit is the time budget, in seconds, of a standard test.
const DefaultTimeLimit = 60

// Reference is the text a session is measured against.
type Reference struct {
	Text       string
	Language   string
	Difficulty string
}

// Reason tells which terminal trigger finalized a session.
type Reason int

const (
	// ReasonCompleted means the whole reference was typed.
	ReasonCompleted Reason = iota
	// ReasonTimeout means the countdown expired.
	ReasonTimeout
)

func (r Reason) String() string {
	switch r {
	case ReasonCompleted:
		return "completed"
	case ReasonTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome of a session.
type Result struct {
	WordsPerMinute  int
	AccuracyPercent int
	TimeTakenUnits  int
	DifficultyLevel string
	Language        string

	TypedChars int
	Mistakes   int
	Reason     Reason
}

// Mark classifies one reference position for highlighting.
type Mark int

const (
	MarkPending Mark = iota
	MarkCorrect
	MarkIncorrect
	MarkCursor
)

// Presenter is the presentation layer driving a session.
//
// Calls happen synchronously from inside Session methods. EnterFullscreen
// and ExitFullscreen are best-effort; their errors never abort a session.
type Presenter interface {
	StartCountdown()
	StopCountdown()
	EnterFullscreen() error
	ExitFullscreen() error
	Warn(err error)
}

type nopPresenter struct{}

func (nopPresenter) StartCountdown()        {}
func (nopPresenter) StopCountdown()         {}
func (nopPresenter) EnterFullscreen() error { return nil }
func (nopPresenter) ExitFullscreen() error  { return nil }
func (nopPresenter) Warn(error)             {}

// Unit selects how text is split into comparable characters.
type Unit int

const (
	// UnitRune compares code points.
	UnitRune Unit = iota
	// UnitGrapheme compares extended grapheme clusters.
	UnitGrapheme
)

func (u Unit) String() string {
	if u == UnitGrapheme {
		return "grapheme"
	}
	return "rune"
}

// ParseUnit parses "rune" or "grapheme". Empty selects UnitRune.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rune":
		return UnitRune, nil
	case "grapheme":
		return UnitGrapheme, nil
	default:
		return UnitRune, fmt.Errorf("unknown unit %q (want rune or grapheme)", s)
	}
}

// Split breaks s into comparable characters.
func (u Unit) Split(s string) []string {
	if u == UnitGrapheme {
		out := make([]string, 0, uniseg.GraphemeClusterCount(s))
		g := uniseg.NewGraphemes(s)
		for g.Next() {
			out = append(out, g.Str())
		}
		return out
	}
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
