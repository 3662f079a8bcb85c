package wordlist

import "strings"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en":
		return filterEnglishASCII
	case "bn":
		return filterBengali
	default:
		return func(string) bool { return true }
	}
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

// filterBengali keeps words written entirely in the Bengali block.
func filterBengali(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r < 0x0980 || r > 0x09FF {
			return false
		}
	}
	return true
}
