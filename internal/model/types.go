// Package model defines shared data structures.
package model

import "time"

// Config defines test settings.
type Config struct {
	Lang      string
	Level     string
	Lesson    int
	Topic     int
	TimeLimit int
	Unit      string

	WordListPath string
	Words        int
	CapsPct      float64
	PunctPct     float64
	PunctSet     string
	FocusWeak    bool
	WeakTop      int
	WeakFactor   float64
	WeakWindow   int
}

// Generated reports whether the reference text comes from a word list.
func (c Config) Generated() bool {
	return c.WordListPath != ""
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang   string
	Since  *time.Time
	Last   int
	Window int
}

// ResultRecord captures a finalized typing test.
type ResultRecord struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	Lang        string    `json:"lang"`
	Difficulty  string    `json:"difficulty"`
	LessonTitle string    `json:"lesson_title"`
	Reason      string    `json:"reason"`
	TimeLimit   int       `json:"time_limit"`
	TimeTaken   int       `json:"time_taken"`
	TypedChars  int       `json:"typed_chars"`
	Mistakes    int       `json:"mistakes"`
	WPM         int       `json:"wpm"`
	Accuracy    int       `json:"accuracy"`
	Eligible    bool      `json:"eligible"`
}

// CharStats stores per-character stats for a result.
type CharStats struct {
	Char      string
	Correct   int
	Incorrect int
}

// CharAggregate aggregates character stats across results.
type CharAggregate struct {
	Char      string
	Correct   int
	Incorrect int
}

// CertificateRecord is an issued certificate.
type CertificateRecord struct {
	ID            string    `json:"id"`
	ResultID      int64     `json:"result_id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	PhotoPath     string    `json:"photo_path"`
	SignaturePath string    `json:"signature_path"`
	IssuedAt      time.Time `json:"issued_at"`
	Path          string    `json:"path"`
}
