// Package certificate gates and renders typing certificates.
package certificate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/typecert/internal/assess"
)

// MinAccuracy is the inclusive accuracy threshold for a certificate.
const MinAccuracy = 90

var (
	// ErrNotEligible is returned when a result is below MinAccuracy.
	ErrNotEligible = errors.New("result is not eligible for a certificate")
	// ErrInvalidIdentity is returned when identity fields are unusable.
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Eligible reports whether a result qualifies for a certificate.
func Eligible(r assess.Result) bool {
	return r.AccuracyPercent >= MinAccuracy
}

// Identity holds the user-supplied fields printed on a certificate.
type Identity struct {
	Name          string
	Address       string
	PhotoPath     string
	SignaturePath string
}

// Validate checks that a name is present and that referenced files exist.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidIdentity)
	}
	files := []struct{ label, path string }{
		{"photo", i.PhotoPath},
		{"signature", i.SignaturePath},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrInvalidIdentity, f.label, f.path, err)
		}
	}
	return nil
}

// Certificate is an issued certificate.
type Certificate struct {
	ID       string
	IssuedAt time.Time
	Identity Identity
	Result   assess.Result
}

// Issue validates the identity and gates the result.
func Issue(r assess.Result, id Identity, now time.Time) (Certificate, error) {
	if !Eligible(r) {
		return Certificate{}, fmt.Errorf("%w: accuracy %d%% is below %d%%", ErrNotEligible, r.AccuracyPercent, MinAccuracy)
	}
	id.Name = strings.TrimSpace(id.Name)
	id.Address = strings.TrimSpace(id.Address)
	if err := id.Validate(); err != nil {
		return Certificate{}, err
	}
	return Certificate{
		ID:       uuid.NewString(),
		IssuedAt: now,
		Identity: id,
		Result:   r,
	}, nil
}

var docStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder(), true).
	Padding(1, 4).
	Align(lipgloss.Center)

// Render returns the certificate as a boxed plain-text document.
func Render(c Certificate) string {
	lines := []string{
		"CERTIFICATE OF TYPING PROFICIENCY",
		"",
		"This certifies that",
		c.Identity.Name,
	}
	if c.Identity.Address != "" {
		lines = append(lines, c.Identity.Address)
	}
	lines = append(lines,
		"",
		fmt.Sprintf("typed %d words per minute at %d%% accuracy", c.Result.WordsPerMinute, c.Result.AccuracyPercent),
		fmt.Sprintf("in %d seconds (%s, %s)", c.Result.TimeTakenUnits, labelOr(c.Result.Language, "-"), labelOr(c.Result.DifficultyLevel, "-")),
		"",
		"Issued "+c.IssuedAt.Format("2006-01-02"),
		"Certificate "+c.ID,
	)
	if c.Identity.PhotoPath != "" {
		lines = append(lines, "Photo: "+c.Identity.PhotoPath)
	}
	if c.Identity.SignaturePath != "" {
		lines = append(lines, "Signature: "+c.Identity.SignaturePath)
	}
	return docStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// Write renders c into dir/certificate-<id>.txt and returns the path.
func Write(dir string, c Certificate) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create certificate dir: %w", err)
	}
	path := filepath.Join(dir, "certificate-"+c.ID+".txt")
	tmpFile, err := os.CreateTemp(dir, "certificate-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp certificate: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.WriteString(Render(c)); err != nil {
		return "", fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close certificate: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write certificate: %w", err)
	}
	return path, nil
}

func labelOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
