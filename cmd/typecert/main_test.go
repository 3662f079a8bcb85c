package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/typecert/internal/archive"
	"github.com/verte-zerg/typecert/internal/assess"
	"github.com/verte-zerg/typecert/internal/certificate"
	"github.com/verte-zerg/typecert/internal/lesson"
	"github.com/verte-zerg/typecert/internal/model"
	"github.com/verte-zerg/typecert/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st
}

func TestValidateConfig(t *testing.T) {
	base := model.Config{TimeLimit: 60}
	if err := validateConfig(base); err != nil {
		t.Fatalf("expected lesson config to be valid: %v", err)
	}
	cases := []model.Config{
		{TimeLimit: 0},
		{TimeLimit: 60, Lesson: -1},
		{TimeLimit: 60, WordListPath: "w.txt", Words: 0},
		{TimeLimit: 60, WordListPath: "w.txt", Words: 5, CapsPct: 1.5},
		{TimeLimit: 60, WordListPath: "w.txt", Words: 5, PunctPct: 0.5},
	}
	for i, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, cfg)
		}
	}
}

func TestLessonSourceUsesCatalog(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	source, err := lessonSource(model.Config{Lang: "EN", Level: "easy"})
	if err != nil {
		t.Fatalf("lesson source: %v", err)
	}
	first, err := source()
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if first.Reference.Text == "" || first.Reference.Language != "en" || first.Reference.Difficulty != "easy" {
		t.Fatalf("unexpected reference %+v", first.Reference)
	}
	second, _ := source()
	if second.Reference != first.Reference {
		t.Fatalf("expected the same lesson on retry")
	}
}

func TestLessonSourceUnknownKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := lessonSource(model.Config{Lang: "xx", Level: "easy"})
	if !errors.Is(err, lesson.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLessonSourceUserCatalogOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "typecert", "lessons.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `[[en.expert]]
title = "Custom"
[[en.expert.topics]]
title = "One"
text = "custom text"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write lessons: %v", err)
	}
	source, err := lessonSource(model.Config{Lang: "en", Level: "expert"})
	if err != nil {
		t.Fatalf("lesson source: %v", err)
	}
	text, _ := source()
	if text.Reference.Text != "custom text" || !strings.Contains(text.Title, "Custom") {
		t.Fatalf("unexpected text %+v", text)
	}
}

func TestGeneratedSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	st := openTestStore(t)
	cfg := model.Config{Lang: "en", WordListPath: path, Words: 4, FocusWeak: true, WeakTop: 2, WeakFactor: 2, WeakWindow: 5}
	source, err := generatedSource(cfg, st, zerolog.Nop())
	if err != nil {
		t.Fatalf("generated source: %v", err)
	}
	text, err := source()
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if got := len(strings.Fields(text.Reference.Text)); got != 4 {
		t.Fatalf("expected 4 words, got %d in %q", got, text.Reference.Text)
	}
	if text.Reference.Language != "en" {
		t.Fatalf("expected en, got %q", text.Reference.Language)
	}
}

func TestGeneratedSourceMissingFile(t *testing.T) {
	cfg := model.Config{Lang: "en", WordListPath: filepath.Join(t.TempDir(), "missing.txt"), Words: 3}
	if _, err := generatedSource(cfg, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing word list")
	}
}

func TestWriteLessonsListsOneBasedKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := writeLessons(&buf, lesson.Builtin()); err != nil {
		t.Fatalf("write lessons: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "--lang en --level easy --lesson 1 --topic 1") {
		t.Fatalf("expected first english lesson, got:\n%s", out)
	}
	if strings.Contains(out, "--lesson 0") {
		t.Fatalf("expected 1-based lesson numbers")
	}
}

func TestIssueStored(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	eligibleID, err := st.InsertResult(ctx, model.ResultRecord{
		SessionID: "s1", StartedAt: now, EndedAt: now, Lang: "en", Difficulty: "easy",
		Reason: "completed", TimeLimit: 60, TimeTaken: 30, TypedChars: 100, WPM: 40, Accuracy: 95, Eligible: true,
	}, nil)
	if err != nil {
		t.Fatalf("insert result: %v", err)
	}
	lowID, err := st.InsertResult(ctx, model.ResultRecord{
		SessionID: "s2", StartedAt: now, EndedAt: now, Lang: "en", Difficulty: "easy",
		Reason: "timeout", TimeLimit: 60, TimeTaken: 60, TypedChars: 100, Mistakes: 20, WPM: 0, Accuracy: 80,
	}, nil)
	if err != nil {
		t.Fatalf("insert result: %v", err)
	}

	dir := t.TempDir()
	path, err := issueStored(ctx, st, eligibleID, certificate.Identity{Name: "Rahim"}, dir, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected certificate in %s, got %s", dir, path)
	}
	certs, err := st.ListCertificates(ctx)
	if err != nil || len(certs) != 1 {
		t.Fatalf("expected one certificate, got %v %v", certs, err)
	}

	if _, err := issueStored(ctx, st, lowID, certificate.Identity{Name: "Rahim"}, dir, now); !errors.Is(err, certificate.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	if _, err := issueStored(ctx, st, 999, certificate.Identity{Name: "Rahim"}, dir, now); err == nil {
		t.Fatalf("expected error for unknown result")
	}
}

func TestResultFromRecordReason(t *testing.T) {
	r := resultFromRecord(model.ResultRecord{Reason: "timeout", Accuracy: 90})
	if r.Reason != assess.ReasonTimeout {
		t.Fatalf("expected timeout reason")
	}
	if !certificate.Eligible(r) {
		t.Fatalf("expected 90%% to be eligible")
	}
}

func TestImportHistorySkipsKnownSessions(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b"} {
		rec := model.ResultRecord{
			SessionID:  id,
			StartedAt:  start.Add(time.Duration(i) * time.Hour),
			EndedAt:    start.Add(time.Duration(i)*time.Hour + time.Minute),
			Lang:       "en",
			Difficulty: "easy",
			Reason:     "timeout",
			TimeLimit:  60,
			TimeTaken:  60,
			WPM:        30 + i,
			Accuracy:   95,
		}
		if _, err := src.InsertResult(ctx, rec, nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	results, err := src.ListResults(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var buf bytes.Buffer
	if err := archive.Export(&buf, results); err != nil {
		t.Fatalf("export: %v", err)
	}
	data := buf.Bytes()

	dst := openTestStore(t)
	added, skipped, err := importHistory(ctx, dst, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if added != 2 || skipped != 0 {
		t.Fatalf("expected 2 added and 0 skipped, got %d and %d", added, skipped)
	}
	added, skipped, err = importHistory(ctx, dst, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if added != 0 || skipped != 2 {
		t.Fatalf("expected re-import to skip both, got %d added and %d skipped", added, skipped)
	}
	got, err := dst.ListResults(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list imported: %v", err)
	}
	if len(got) != 2 || got[1].WPM != 31 || got[1].SessionID != "b" {
		t.Fatalf("unexpected imported results: %+v", got)
	}
}

func TestImportHistoryRejectsGarbage(t *testing.T) {
	st := openTestStore(t)
	if _, _, err := importHistory(context.Background(), st, strings.NewReader("not zstd")); err == nil {
		t.Fatalf("expected error for invalid archive")
	}
}

func TestOpenLogFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "typecert", "typecert.log")
	for _, line := range []string{"first\n", "second\n"} {
		f, err := openLogFile(path)
		if err != nil {
			t.Fatalf("open log file: %v", err)
		}
		if _, err := f.WriteString(line); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("expected appended lines, got %q", data)
	}
}
