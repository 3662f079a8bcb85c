package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typecert/internal/model"
	"github.com/verte-zerg/typecert/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "typecert.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		rec := model.ResultRecord{
			SessionID:  "s",
			StartedAt:  start,
			EndedAt:    start.Add(60 * time.Second),
			Lang:       "en",
			Difficulty: "easy",
			Reason:     "timeout",
			TimeLimit:  60,
			TimeTaken:  60,
			TypedChars: 120,
			Mistakes:   i,
			WPM:        24 - i,
			Accuracy:   100 - i*6,
		}
		id, err := st.InsertResult(ctx, rec, []model.CharStats{
			{Char: "a", Correct: 5, Incorrect: 0},
			{Char: "b", Correct: 4, Incorrect: 1},
		})
		if err != nil {
			t.Fatalf("insert result: %v", err)
		}
		ids = append(ids, id)
	}
	if err := st.InsertCertificate(ctx, model.CertificateRecord{ID: "old", ResultID: ids[0], Name: "Ana", IssuedAt: time.Unix(1, 0)}); err != nil {
		t.Fatalf("insert certificate: %v", err)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Lang: "en", Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 || report.Results[0].ID != ids[1] || report.Results[1].ID != ids[2] {
		t.Fatalf("unexpected results: %+v", report.Results)
	}
	if len(report.CharAggs) != 2 {
		t.Fatalf("expected char aggregates, got %d", len(report.CharAggs))
	}
	if len(report.Certificates) != 0 {
		t.Fatalf("certificates outside the window must be filtered")
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 2, 5); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Tests: 2", "Best WPM: 23", "Certificate eligible: 1", "Learning Curves", "Most typed: a b", "Per-Character"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
