package assess

import "math"

// charsPerWord is the standard word length used for WPM.
const charsPerWord = 5.0

// NetWPM returns round((typed/5 - mistakes) / (timeTaken/60)), floored at 0.
// timeTaken is in seconds; a non-positive duration yields 0.
func NetWPM(typedChars, mistakes, timeTaken int) int {
	if timeTaken <= 0 {
		return 0
	}
	minutes := float64(timeTaken) / 60.0
	wpm := math.Round((float64(typedChars)/charsPerWord - float64(mistakes)) / minutes)
	if wpm <= 0 {
		return 0
	}
	return int(wpm)
}

// Accuracy returns the rounded percentage of correctly typed characters.
// No typed characters yields 0.
func Accuracy(typedChars, mistakes int) int {
	if typedChars <= 0 {
		return 0
	}
	acc := math.Round(float64(typedChars-mistakes) / float64(typedChars) * 100)
	if acc <= 0 {
		return 0
	}
	return int(acc)
}

func countMistakes(reference, typed []string) int {
	mistakes := 0
	for i, ch := range typed {
		if i >= len(reference) {
			break
		}
		if ch != reference[i] {
			mistakes++
		}
	}
	return mistakes
}
