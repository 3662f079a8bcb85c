package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typecert/internal/archive"
	"github.com/verte-zerg/typecert/internal/assess"
	"github.com/verte-zerg/typecert/internal/certificate"
	"github.com/verte-zerg/typecert/internal/config"
	"github.com/verte-zerg/typecert/internal/lesson"
	"github.com/verte-zerg/typecert/internal/model"
	"github.com/verte-zerg/typecert/internal/stats"
	"github.com/verte-zerg/typecert/internal/store"
)

var (
	statsLang   string
	statsSince  string
	statsLast   int
	statsWindow int
	statsRows   int

	certName      string
	certAddress   string
	certPhoto     string
	certSignature string
	certOut       string

	exportOut  string
	exportLang string

	importIn string
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typecert configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# lang = %q              # Language code
# level = %q           # Difficulty level
# lesson = 1               # Lesson number
# topic = 1                # Topic number
# time-limit = %d          # Seconds per attempt
# unit = "rune"            # Comparison unit: rune or grapheme
# wordlist = ""            # Generate texts from this word list instead of lessons
# words = %d               # Words per generated text
# caps = %.2f            # Probability of capitalized first letter (0-1)
# punct = %.2f           # Punctuation probability per word (0-1)
# punct-set = %q     # Punctuation set
# focus-weak = false       # Bias generated texts toward weak characters
# weak-top = %d             # Number of weak characters to focus on
# weak-factor = %.1f       # Weight factor for weak characters
# weak-window = %d         # Number of recent results to compute weak chars

[certificate]
# name = ""
# address = ""
# photo = ""               # Path to a photo file
# signature = ""           # Path to a signature image
# out-dir = ""             # Defaults to the data directory

[log]
# The test screen logs to $XDG_STATE_HOME/typecert/typecert.log, subcommands to stderr.
# level = "warn"           # trace, debug, info, warn, error
# format = "json"          # json or pretty
`,
		defaultLang,
		defaultLevel,
		assess.DefaultTimeLimit,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
	)
}

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List available lessons",
		Args:  cobra.NoArgs,
		RunE:  runLessonsCmd,
	}
}

func runLessonsCmd(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	return writeLessons(cmd.OutOrStdout(), catalog)
}

func writeLessons(w io.Writer, catalog *lesson.Catalog) error {
	for _, key := range catalog.Keys() {
		l, err := catalog.Text(key)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "--lang %s --level %s --lesson %d --topic %d\t%s · %s\n",
			key.Language, key.Difficulty, key.Lesson+1, key.Topic+1, l.Title, l.Topic)
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&statsWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsRows, "rows", defaultHistoryRows, "number of recent results listed")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	cfg := model.StatsConfig{
		Lang:   statsLang,
		Since:  since,
		Last:   statsLast,
		Window: statsWindow,
	}
	_, log, err := loadFileConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), cfg.Window, statsRows)
}

func parseSince(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func newCertificateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate <result-id>",
		Short: "Issue a certificate for a stored result",
		Args:  cobra.ExactArgs(1),
		RunE:  runCertificateCmd,
	}
	cmd.Flags().StringVar(&certName, "name", "", "name printed on the certificate")
	cmd.Flags().StringVar(&certAddress, "address", "", "address printed on the certificate")
	cmd.Flags().StringVar(&certPhoto, "photo", "", "path to a photo file")
	cmd.Flags().StringVar(&certSignature, "signature", "", "path to a signature image")
	cmd.Flags().StringVar(&certOut, "out", "", "output directory")
	return cmd
}

func runCertificateCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid result id %q", args[0])
	}
	fileCfg, log, err := loadFileConfig()
	if err != nil {
		return err
	}
	c := fileCfg.Certificate
	applyStringConfig(cmd, "name", &certName, c.Name)
	applyStringConfig(cmd, "address", &certAddress, c.Address)
	applyStringConfig(cmd, "photo", &certPhoto, c.Photo)
	applyStringConfig(cmd, "signature", &certSignature, c.Signature)
	applyStringConfig(cmd, "out", &certOut, c.OutDir)
	if certOut == "" {
		certOut = config.DefaultCertificateDir()
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	identity := certificate.Identity{
		Name:          certName,
		Address:       certAddress,
		PhotoPath:     certPhoto,
		SignaturePath: certSignature,
	}
	path, err := issueStored(cmd.Context(), st, id, identity, certOut, time.Now())
	if err != nil {
		return err
	}
	log.Info().Int64("result", id).Str("path", path).Msg("certificate issued")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}

// issueStored issues, writes and records a certificate for a saved result.
func issueStored(ctx context.Context, st *store.Store, id int64, identity certificate.Identity, dir string, now time.Time) (string, error) {
	rec, err := st.GetResult(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("no result with id %d (see: typecert stats)", id)
		}
		return "", fmt.Errorf("failed to load result: %w", err)
	}
	cert, err := certificate.Issue(resultFromRecord(rec), identity, now)
	if err != nil {
		return "", err
	}
	path, err := certificate.Write(dir, cert)
	if err != nil {
		return "", err
	}
	err = st.InsertCertificate(ctx, model.CertificateRecord{
		ID:            cert.ID,
		ResultID:      rec.ID,
		Name:          cert.Identity.Name,
		Address:       cert.Identity.Address,
		PhotoPath:     cert.Identity.PhotoPath,
		SignaturePath: cert.Identity.SignaturePath,
		IssuedAt:      cert.IssuedAt,
		Path:          path,
	})
	if err != nil {
		return "", fmt.Errorf("failed to record certificate: %w", err)
	}
	return path, nil
}

func resultFromRecord(rec model.ResultRecord) assess.Result {
	reason := assess.ReasonCompleted
	if rec.Reason == assess.ReasonTimeout.String() {
		reason = assess.ReasonTimeout
	}
	return assess.Result{
		WordsPerMinute:  rec.WPM,
		AccuracyPercent: rec.Accuracy,
		TimeTakenUnits:  rec.TimeTaken,
		DifficultyLevel: rec.Difficulty,
		Language:        rec.Lang,
		TypedChars:      rec.TypedChars,
		Mistakes:        rec.Mistakes,
		Reason:          reason,
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export result history as zstd-compressed JSON lines",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "typecert-history.jsonl.zst", "output file")
	cmd.Flags().StringVar(&exportLang, "lang", "", "language filter")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) (err error) {
	_, log, err := loadFileConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	results, err := st.ListResults(cmd.Context(), model.StatsConfig{Lang: exportLang})
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	if err := archive.Export(f, results); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d results to %s\n", len(results), exportOut)
	return err
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import result history written by export",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importIn, "in", "typecert-history.jsonl.zst", "input file")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	_, log, err := loadFileConfig()
	if err != nil {
		return err
	}
	f, err := os.Open(importIn)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	added, skipped, err := importHistory(cmd.Context(), st, f)
	if err != nil {
		return err
	}
	log.Info().Int("added", added).Int("skipped", skipped).Str("path", importIn).Msg("history imported")
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d results from %s (%d already present)\n", added, importIn, skipped)
	return err
}

// importHistory stores archived results, skipping sessions already present.
// Per-character stats are not part of the archive, so imported results do
// not feed weak character selection.
func importHistory(ctx context.Context, st *store.Store, r io.Reader) (added, skipped int, err error) {
	results, err := archive.Import(r)
	if err != nil {
		return 0, 0, err
	}
	for _, rec := range results {
		if rec.SessionID != "" {
			exists, err := st.HasSession(ctx, rec.SessionID)
			if err != nil {
				return added, skipped, fmt.Errorf("failed to check session: %w", err)
			}
			if exists {
				skipped++
				continue
			}
		}
		if _, err := st.InsertResult(ctx, rec, nil); err != nil {
			return added, skipped, fmt.Errorf("failed to save result: %w", err)
		}
		added++
	}
	return added, skipped, nil
}
