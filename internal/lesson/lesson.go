// Package lesson provides reference texts keyed by language, difficulty,
// lesson and topic.
package lesson

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
)

// ErrNotFound is returned when no text exists for a key.
var ErrNotFound = errors.New("lesson not found")

// Key selects one reference text. Lesson and Topic are zero-based.
type Key struct {
	Language   string
	Difficulty string
	Lesson     int
	Topic      int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d/%d", k.Language, k.Difficulty, k.Lesson+1, k.Topic+1)
}

// Lesson is a resolved reference text.
type Lesson struct {
	Key   Key
	Title string
	Topic string
	Text  string
}

// Provider supplies reference texts.
type Provider interface {
	Text(key Key) (Lesson, error)
}

// Table is the nested lookup layout: language -> difficulty -> lessons.
type Table map[string]map[string][]Spec

// Spec is one lesson with its topics.
type Spec struct {
	Title  string      `toml:"title"`
	Topics []TopicSpec `toml:"topics"`
}

// TopicSpec is one typing text inside a lesson.
type TopicSpec struct {
	Title string `toml:"title"`
	Text  string `toml:"text"`
}

// Catalog is an immutable Provider backed by a Table.
type Catalog struct {
	table Table
}

// NewCatalog copies table into a new Catalog. Language and difficulty names
// are lower-cased; topics with empty text are dropped.
func NewCatalog(table Table) *Catalog {
	return &Catalog{table: copyTable(table)}
}

// Text implements Provider.
func (c *Catalog) Text(key Key) (Lesson, error) {
	lang := normalize(key.Language)
	diff := normalize(key.Difficulty)
	levels, ok := c.table[lang]
	if !ok {
		return Lesson{}, fmt.Errorf("language %q: %w", key.Language, ErrNotFound)
	}
	lessons, ok := levels[diff]
	if !ok {
		return Lesson{}, fmt.Errorf("difficulty %q for %s: %w", key.Difficulty, lang, ErrNotFound)
	}
	if key.Lesson < 0 || key.Lesson >= len(lessons) {
		return Lesson{}, fmt.Errorf("lesson %d of %s/%s (have %d): %w", key.Lesson+1, lang, diff, len(lessons), ErrNotFound)
	}
	spec := lessons[key.Lesson]
	if key.Topic < 0 || key.Topic >= len(spec.Topics) {
		return Lesson{}, fmt.Errorf("topic %d of %s (have %d): %w", key.Topic+1, spec.Title, len(spec.Topics), ErrNotFound)
	}
	topic := spec.Topics[key.Topic]
	return Lesson{
		Key:   Key{Language: lang, Difficulty: diff, Lesson: key.Lesson, Topic: key.Topic},
		Title: spec.Title,
		Topic: topic.Title,
		Text:  topic.Text,
	}, nil
}

// Languages returns the sorted language codes.
func (c *Catalog) Languages() []string {
	langs := lo.Keys(c.table)
	sort.Strings(langs)
	return langs
}

// Difficulties returns the sorted difficulty names for a language.
func (c *Catalog) Difficulties(lang string) []string {
	diffs := lo.Keys(c.table[normalize(lang)])
	sort.Strings(diffs)
	return diffs
}

// Lessons returns a copy of the lessons for a language and difficulty.
func (c *Catalog) Lessons(lang, difficulty string) []Spec {
	return copySpecs(c.table[normalize(lang)][normalize(difficulty)])
}

// Keys enumerates every key in the catalog in a stable order.
func (c *Catalog) Keys() []Key {
	var keys []Key
	for _, lang := range c.Languages() {
		for _, diff := range c.Difficulties(lang) {
			for li, spec := range c.table[lang][diff] {
				for ti := range spec.Topics {
					keys = append(keys, Key{Language: lang, Difficulty: diff, Lesson: li, Topic: ti})
				}
			}
		}
	}
	return keys
}

// Merge returns a new Catalog where other's difficulty lists replace c's.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := copyTable(c.table)
	if other == nil {
		return &Catalog{table: merged}
	}
	for lang, levels := range other.table {
		if _, ok := merged[lang]; !ok {
			merged[lang] = map[string][]Spec{}
		}
		for diff, lessons := range levels {
			merged[lang][diff] = copySpecs(lessons)
		}
	}
	return &Catalog{table: merged}
}

// LoadFile decodes a TOML lesson table. A missing file yields an empty catalog.
func LoadFile(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return NewCatalog(nil), nil
		}
		return nil, fmt.Errorf("failed to stat lessons: %w", err)
	}
	var table Table
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return nil, fmt.Errorf("failed to decode lessons: %w", err)
	}
	return NewCatalog(table), nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func copyTable(table Table) Table {
	out := make(Table, len(table))
	for lang, levels := range table {
		lang = normalize(lang)
		if lang == "" {
			continue
		}
		if _, ok := out[lang]; !ok {
			out[lang] = map[string][]Spec{}
		}
		for diff, lessons := range levels {
			diff = normalize(diff)
			if diff == "" {
				continue
			}
			lessons = copySpecs(lessons)
			if len(lessons) == 0 {
				continue
			}
			out[lang][diff] = lessons
		}
	}
	for lang, levels := range out {
		if len(levels) == 0 {
			delete(out, lang)
		}
	}
	return out
}

func copySpecs(specs []Spec) []Spec {
	out := make([]Spec, 0, len(specs))
	for _, spec := range specs {
		topics := lo.Filter(spec.Topics, func(t TopicSpec, _ int) bool {
			return strings.TrimSpace(t.Text) != ""
		})
		if len(topics) == 0 {
			continue
		}
		out = append(out, Spec{Title: spec.Title, Topics: topics})
	}
	return out
}
