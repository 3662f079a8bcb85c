// Package generator builds practice reference texts from word lists.
package generator

import (
	"math/rand"
	"strings"
	"unicode"
)

// Options control text generation.
type Options struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune

	// Weak biases word choice toward words containing these characters.
	Weak   map[rune]struct{}
	Factor float64
}

// Generator produces randomized practice text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator with the given seed.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Text joins Words generated words with single spaces.
func (g *Generator) Text(words []string, opts Options) string {
	if len(words) == 0 || opts.Words <= 0 {
		return ""
	}
	pick := g.uniform(words)
	if len(opts.Weak) > 0 {
		pick = g.weighted(words, opts.Weak, opts.Factor)
	}
	out := make([]string, 0, opts.Words)
	for i := 0; i < opts.Words; i++ {
		word := pick()
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

func (g *Generator) uniform(words []string) func() string {
	return func() string {
		return words[g.rnd.Intn(len(words))]
	}
}

func (g *Generator) weighted(words []string, weak map[rune]struct{}, factor float64) func() string {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		hits := 0
		for _, r := range word {
			if _, ok := weak[r]; ok {
				hits++
			}
		}
		weights[i] = 1.0 + float64(hits)*factor
		total += weights[i]
	}
	return func() string {
		r := g.rnd.Float64() * total
		acc := 0.0
		for i, w := range weights {
			acc += w
			if r <= acc {
				return words[i]
			}
		}
		return words[len(words)-1]
	}
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
