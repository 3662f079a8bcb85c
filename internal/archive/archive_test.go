package archive

import (
	"bytes"
	"testing"
	"time"

	"github.com/verte-zerg/typecert/internal/model"
)

func TestExportImport(t *testing.T) {
	results := []model.ResultRecord{
		{ID: 1, Lang: "en", WPM: 41, Accuracy: 96, EndedAt: time.Unix(60, 0).UTC()},
		{ID: 2, Lang: "bn", WPM: 18, Accuracy: 82, EndedAt: time.Unix(120, 0).UTC()},
	}
	var buf bytes.Buffer
	if err := Export(&buf, results); err != nil {
		t.Fatalf("export: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte(`"lang"`)) {
		t.Fatalf("expected compressed output")
	}
	got, err := Import(&buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 2 || got[1].Lang != "bn" || got[0].WPM != 41 || !got[1].EndedAt.Equal(results[1].EndedAt) {
		t.Fatalf("unexpected import: %+v", got)
	}
}

func TestImportGarbage(t *testing.T) {
	if _, err := Import(bytes.NewReader([]byte("not zstd"))); err == nil {
		t.Fatalf("expected error for non-zstd input")
	}
}
