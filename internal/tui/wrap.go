package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typecert/internal/assess"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes renders each reference character according to its mark.
func buildStyledRunes(units []string, marks []assess.Mark) []styledRune {
	cursorIndex := -1
	for i, mark := range marks {
		if mark == assess.MarkCursor {
			cursorIndex = i
			break
		}
	}
	current := wordForCursor(findWords(units), cursorIndex)

	out := make([]styledRune, 0, len(units))
	for i, unit := range units {
		displayed := unit
		space := unit == " "
		style := pendingStyle
		switch marks[i] {
		case assess.MarkCorrect:
			style = correctStyle
		case assess.MarkIncorrect:
			style = incorrectStyle
			if space {
				displayed = "•"
			}
		case assess.MarkCursor:
			if current != nil && i >= current.start && i < current.end {
				style = currentWordStyle
			}
			style = style.Underline(true)
		default:
			if !space && current != nil && i >= current.start && i < current.end {
				style = currentWordStyle
			}
		}
		width := runewidth.StringWidth(displayed)
		if width == 0 {
			width = 1
		}
		out = append(out, styledRune{
			s:       style.Render(displayed),
			width:   width,
			isSpace: space,
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(units []string) []wordRange {
	words := []wordRange{}
	start := -1
	for i, u := range units {
		if u == " " {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(units)})
	}
	return words
}

func wordForCursor(words []wordRange, cursorIndex int) *wordRange {
	if len(words) == 0 || cursorIndex < 0 {
		return nil
	}
	for i, w := range words {
		if cursorIndex < w.end {
			return &words[i]
		}
	}
	return &words[len(words)-1]
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
