// Package main provides the CLI entrypoint for typecert.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typecert/internal/assess"
	"github.com/verte-zerg/typecert/internal/certificate"
	"github.com/verte-zerg/typecert/internal/config"
	"github.com/verte-zerg/typecert/internal/generator"
	"github.com/verte-zerg/typecert/internal/lesson"
	"github.com/verte-zerg/typecert/internal/logger"
	"github.com/verte-zerg/typecert/internal/model"
	"github.com/verte-zerg/typecert/internal/stats"
	"github.com/verte-zerg/typecert/internal/store"
	"github.com/verte-zerg/typecert/internal/tui"
	"github.com/verte-zerg/typecert/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultLevel       = "easy"
	defaultWords       = 25
	defaultCaps        = 0.0
	defaultPunct       = 0.0
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 5
	defaultHistoryRows = 20
)

const defaultPunctSet = ".,!?;:"

var (
	testLang       string
	testLevel      string
	testLesson     int
	testTopic      int
	testTime       int
	testUnit       string
	testWordList   string
	testWords      int
	testCaps       float64
	testPunct      float64
	testPunctSet   string
	testFocusWeak  bool
	testWeakTop    int
	testWeakFactor float64
	testWeakWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typecert",
		Short:         "Timed typing test with certificates",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().StringVar(&testLang, "lang", defaultLang, "language code")
	rootCmd.Flags().StringVar(&testLevel, "level", defaultLevel, "difficulty level")
	rootCmd.Flags().IntVar(&testLesson, "lesson", 1, "lesson number (1-based)")
	rootCmd.Flags().IntVar(&testTopic, "topic", 1, "topic number within the lesson (1-based)")
	rootCmd.Flags().IntVar(&testTime, "time", assess.DefaultTimeLimit, "time limit in seconds")
	rootCmd.Flags().StringVar(&testUnit, "unit", "rune", "comparison unit: rune or grapheme")
	rootCmd.Flags().StringVar(&testWordList, "wordlist", "", "generate the text from this word list instead of a lesson")
	rootCmd.Flags().IntVar(&testWords, "words", defaultWords, "words per generated text")
	rootCmd.Flags().Float64Var(&testCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&testPunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&testPunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&testFocusWeak, "focus-weak", false, "bias generated text toward weak characters")
	rootCmd.Flags().IntVar(&testWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&testWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&testWeakWindow, "weak-window", defaultWeakWindow, "number of recent results to compute weak chars")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCertificateCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

// loadFileConfig reads the config file, applies environment overrides and
// builds the logger.
func loadFileConfig() (config.FileConfig, zerolog.Logger, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg.ApplyEnv()
	log := logger.Setup(fileCfg.Log.Level, fileCfg.Log.Format, os.Stderr)
	return fileCfg, log, nil
}

// openLogFile opens path for appending, creating parent directories.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, log, err := loadFileConfig()
	if err != nil {
		return err
	}
	// Bubble Tea owns the terminal, so the session logs to a file.
	logFile, err := openLogFile(config.DefaultLogPath())
	if err != nil {
		log.Warn().Err(err).Msg("logging disabled")
		log = zerolog.Nop()
	} else {
		defer func() {
			_ = logFile.Close()
		}()
		log = logger.Setup(fileCfg.Log.Level, fileCfg.Log.Format, logFile)
	}
	t := fileCfg.Test
	applyStringConfig(cmd, "lang", &testLang, t.Lang)
	applyStringConfig(cmd, "level", &testLevel, t.Level)
	applyIntConfig(cmd, "lesson", &testLesson, t.Lesson)
	applyIntConfig(cmd, "topic", &testTopic, t.Topic)
	applyIntConfig(cmd, "time", &testTime, t.TimeLimit)
	applyStringConfig(cmd, "unit", &testUnit, t.Unit)
	applyStringConfig(cmd, "wordlist", &testWordList, t.WordList)
	applyIntConfig(cmd, "words", &testWords, t.Words)
	applyFloatConfig(cmd, "caps", &testCaps, t.CapsPct)
	applyFloatConfig(cmd, "punct", &testPunct, t.PunctPct)
	applyStringConfig(cmd, "punct-set", &testPunctSet, t.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &testFocusWeak, t.FocusWeak)
	applyIntConfig(cmd, "weak-top", &testWeakTop, t.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &testWeakFactor, t.WeakFactor)
	applyIntConfig(cmd, "weak-window", &testWeakWindow, t.WeakWindow)

	cfg := model.Config{
		Lang:         testLang,
		Level:        testLevel,
		Lesson:       testLesson - 1,
		Topic:        testTopic - 1,
		TimeLimit:    testTime,
		Unit:         testUnit,
		WordListPath: testWordList,
		Words:        testWords,
		CapsPct:      testCaps,
		PunctPct:     testPunct,
		PunctSet:     testPunctSet,
		FocusWeak:    testFocusWeak,
		WeakTop:      testWeakTop,
		WeakFactor:   testWeakFactor,
		WeakWindow:   testWeakWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	unit, err := assess.ParseUnit(cfg.Unit)
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

	var source tui.Source
	if cfg.Generated() {
		source, err = generatedSource(cfg, st, log)
	} else {
		source, err = lessonSource(cfg)
	}
	if err != nil {
		return err
	}

	m, err := tui.NewModel(tui.Options{
		Config:   cfg,
		Store:    st,
		Source:   source,
		Logger:   log,
		Unit:     unit,
		Identity: identityFromConfig(fileCfg.Certificate),
		CertDir:  certificateDir(fileCfg.Certificate),
	})
	if err != nil {
		return err
	}
	// The alternate screen is requested by the session on the first keystroke.
	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadCatalog() (*lesson.Catalog, error) {
	user, err := lesson.LoadFile(config.DefaultLessonsPath())
	if err != nil {
		return nil, err
	}
	return lesson.Builtin().Merge(user), nil
}

// lessonSource serves the same catalog lesson on every attempt.
func lessonSource(cfg model.Config) (tui.Source, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	key := lesson.Key{Language: cfg.Lang, Difficulty: cfg.Level, Lesson: cfg.Lesson, Topic: cfg.Topic}
	l, err := catalog.Text(key)
	if err != nil {
		return nil, fmt.Errorf("%w\nRun: typecert lessons", err)
	}
	text := tui.Text{
		Reference: assess.Reference{Text: l.Text, Language: l.Key.Language, Difficulty: l.Key.Difficulty},
		Title:     fmt.Sprintf("%s · %s", l.Title, l.Topic),
	}
	return func() (tui.Text, error) { return text, nil }, nil
}

// generatedSource draws a fresh text from the word list on every attempt,
// refreshing the weak character set from history when focus is enabled.
func generatedSource(cfg model.Config, st *store.Store, log zerolog.Logger) (tui.Source, error) {
	words, err := wordlist.LoadWords(cfg.WordListPath, wordlist.FilterForLang(cfg.Lang))
	if err != nil {
		return nil, fmt.Errorf("failed to load word list %s: %w", cfg.WordListPath, err)
	}
	gen := generator.New(time.Now().UnixNano())
	noticeLogged := false
	return func() (tui.Text, error) {
		opts := generator.Options{
			Words:    cfg.Words,
			CapsPct:  cfg.CapsPct,
			PunctPct: cfg.PunctPct,
			PunctSet: []rune(cfg.PunctSet),
			Factor:   cfg.WeakFactor,
		}
		if cfg.FocusWeak {
			aggs, err := st.GetWeakChars(context.Background(), cfg.WeakWindow, cfg.Lang)
			if err != nil {
				log.Warn().Err(err).Msg("failed to load weak chars")
			}
			opts.Weak = stats.SelectWeakChars(aggs, cfg.WeakTop)
			if len(opts.Weak) == 0 && !noticeLogged {
				log.Info().Msg("no stats available for weak-char focus yet; using normal generator")
				noticeLogged = true
			}
		}
		return tui.Text{
			Reference: assess.Reference{Text: gen.Text(words, opts), Language: cfg.Lang, Difficulty: "practice"},
			Title:     "Practice",
		}, nil
	}, nil
}

func identityFromConfig(c config.CertificateConfig) certificate.Identity {
	return certificate.Identity{
		Name:          deref(c.Name),
		Address:       deref(c.Address),
		PhotoPath:     deref(c.Photo),
		SignaturePath: deref(c.Signature),
	}
}

func certificateDir(c config.CertificateConfig) string {
	if c.OutDir != nil && strings.TrimSpace(*c.OutDir) != "" {
		return *c.OutDir
	}
	return config.DefaultCertificateDir()
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if cfg.TimeLimit <= 0 {
		return fmt.Errorf("--time must be > 0")
	}
	if cfg.Lesson < 0 {
		return fmt.Errorf("--lesson must be >= 1")
	}
	if cfg.Topic < 0 {
		return fmt.Errorf("--topic must be >= 1")
	}
	if !cfg.Generated() {
		return nil
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}
