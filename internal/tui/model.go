// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/verte-zerg/typecert/internal/assess"
	"github.com/verte-zerg/typecert/internal/certificate"
	"github.com/verte-zerg/typecert/internal/model"
	statsPkg "github.com/verte-zerg/typecert/internal/stats"
	"github.com/verte-zerg/typecert/internal/store"
)

// Text is one reference text offered to the user.
type Text struct {
	Reference assess.Reference
	Title     string
}

// Source produces the reference text for the next attempt.
type Source func() (Text, error)

// Options configures a Model.
type Options struct {
	Config   model.Config
	Store    *store.Store
	Source   Source
	Logger   zerolog.Logger
	Unit     assess.Unit
	Identity certificate.Identity
	CertDir  string
	// Fullscreen reports whether the terminal can switch to the alternate
	// screen. Defaults to a stdout terminal check.
	Fullscreen func() error
	Now        func() time.Time
}

type phase int

const (
	phaseTyping phase = iota
	phaseResult
	phaseForm
	phaseIssued
)

const (
	fieldName = iota
	fieldAddress
	fieldPhoto
	fieldSignature
	fieldCount
)

// Model implements the Bubble Tea typing UI.
type Model struct {
	config     model.Config
	store      *store.Store
	source     Source
	log        zerolog.Logger
	certDir    string
	fullscreen func() error
	now        func() time.Time

	session *assess.Session
	timer   timer.Model
	pending []tea.Cmd

	width  int
	height int

	phase     phase
	title     string
	typed     []rune
	startedAt time.Time
	warning   string
	errMsg    string

	result     assess.Result
	resultID   int64
	eligible   bool
	finishedAt time.Time

	inputs   []textinput.Model
	focus    int
	cert     certificate.Certificate
	certPath string

	lastWPM int
	lastAcc int
	hasLast bool
	bestWPM int
	count   int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	warnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4A017"))
	titleStyle       = lipgloss.NewStyle().Bold(true)
	resultStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 3)
)

var errNotTerminal = errors.New("stdout is not a terminal")

// inputGrace is how long typing keys are ignored after an attempt ends.
const inputGrace = 750 * time.Millisecond

// NewModel constructs a typing TUI model and starts the first attempt.
func NewModel(opts Options) (*Model, error) {
	m := &Model{
		config:     opts.Config,
		store:      opts.Store,
		source:     opts.Source,
		log:        opts.Logger,
		certDir:    opts.CertDir,
		fullscreen: opts.Fullscreen,
		now:        opts.Now,
	}
	if m.fullscreen == nil {
		m.fullscreen = terminalFullscreen
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.session = assess.New(m, assess.WithLogger(opts.Logger), assess.WithUnit(opts.Unit))
	m.inputs = newIdentityInputs(opts.Identity)
	if err := m.startAttempt(); err != nil {
		return nil, err
	}
	m.loadFooterStats()
	return m, nil
}

func terminalFullscreen() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	return nil
}

// StartCountdown implements assess.Presenter.
func (m *Model) StartCountdown() {
	m.startedAt = m.now()
	m.timer = timer.NewWithInterval(time.Duration(m.session.TimeLimit())*time.Second, time.Second)
	m.pending = append(m.pending, m.timer.Init())
}

// StopCountdown implements assess.Presenter.
func (m *Model) StopCountdown() {
	m.pending = append(m.pending, m.timer.Stop())
}

// EnterFullscreen implements assess.Presenter.
func (m *Model) EnterFullscreen() error {
	if err := m.fullscreen(); err != nil {
		return err
	}
	m.pending = append(m.pending, tea.EnterAltScreen)
	return nil
}

// ExitFullscreen implements assess.Presenter.
func (m *Model) ExitFullscreen() error {
	m.pending = append(m.pending, tea.ExitAltScreen)
	return nil
}

// Warn implements assess.Presenter.
func (m *Model) Warn(err error) {
	m.warning = err.Error()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timer.TickMsg:
		if msg.ID != m.timer.ID() || !m.timer.Running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		if res, done := m.session.OnClockTick(); done {
			m.finish(res)
		}
		return m, m.flush(cmd)
	case timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		switch m.phase {
		case phaseTyping:
			return m, m.updateTyping(msg)
		case phaseResult, phaseIssued:
			return m, m.updateResult(msg)
		case phaseForm:
			return m, m.updateForm(msg)
		}
	}
	return m, nil
}

func (m *Model) updateTyping(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return m.quit()
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
	}
	return m.flush()
}

func (m *Model) updateResult(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEsc {
		return m.quit()
	}
	// Letters still in flight from the attempt must not act as shortcuts.
	if (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) && m.now().Sub(m.finishedAt) < inputGrace {
		return nil
	}
	switch msg.String() {
	case "q":
		return m.quit()
	case "r":
		if err := m.startAttempt(); err != nil {
			m.errMsg = err.Error()
			m.log.Error().Err(err).Msg("failed to start attempt")
		}
	case "c":
		if m.phase == phaseResult && m.eligible {
			m.phase = phaseForm
			m.errMsg = ""
			m.setFocus(fieldName)
			return textinput.Blink
		}
	}
	return m.flush()
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.phase = phaseResult
		return nil
	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % fieldCount)
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return nil
	case tea.KeyEnter:
		if m.focus < fieldCount-1 {
			m.setFocus(m.focus + 1)
			return nil
		}
		m.issueCertificate()
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) quit() tea.Cmd {
	m.session.Close()
	return m.flush(tea.Quit)
}

// flush returns cmds together with everything the presenter queued.
func (m *Model) flush(cmds ...tea.Cmd) tea.Cmd {
	all := append(m.pending, cmds...)
	m.pending = nil
	return tea.Batch(all...)
}

func (m *Model) startAttempt() error {
	text, err := m.source()
	if err != nil {
		return fmt.Errorf("failed to load reference text: %w", err)
	}
	m.title = text.Title
	m.typed = nil
	m.warning = ""
	m.errMsg = ""
	m.result = assess.Result{}
	m.resultID = 0
	m.eligible = false
	m.certPath = ""
	m.startedAt = m.now()
	m.phase = phaseTyping
	m.session.Start(text.Reference, m.config.TimeLimit)
	m.log.Debug().Str("session", m.session.ID()).Str("title", text.Title).Msg("attempt ready")
	return nil
}

// handleRunes appends keystrokes; the typed text only ever grows.
func (m *Model) handleRunes(runes []rune) {
	if m.session.RefLen() == 0 {
		if res, done := m.session.OnInputChanged(""); done {
			m.finish(res)
		}
		return
	}
	for _, r := range runes {
		if m.session.Finalized() || m.session.TypedLen() >= m.session.RefLen() {
			return
		}
		m.typed = append(m.typed, r)
		if res, done := m.session.OnInputChanged(string(m.typed)); done {
			m.finish(res)
			return
		}
	}
}

func (m *Model) finish(res assess.Result) {
	endedAt := m.now()
	m.finishedAt = endedAt
	m.result = res
	m.eligible = certificate.Eligible(res)
	m.phase = phaseResult

	m.lastWPM = res.WordsPerMinute
	m.lastAcc = res.AccuracyPercent
	m.hasLast = true
	m.count++
	if res.WordsPerMinute > m.bestWPM {
		m.bestWPM = res.WordsPerMinute
	}

	if m.store == nil {
		return
	}
	rec := model.ResultRecord{
		SessionID:   m.session.ID(),
		StartedAt:   m.startedAt,
		EndedAt:     endedAt,
		Lang:        res.Language,
		Difficulty:  res.DifficultyLevel,
		LessonTitle: m.title,
		Reason:      res.Reason.String(),
		TimeLimit:   m.session.TimeLimit(),
		TimeTaken:   res.TimeTakenUnits,
		TypedChars:  res.TypedChars,
		Mistakes:    res.Mistakes,
		WPM:         res.WordsPerMinute,
		Accuracy:    res.AccuracyPercent,
		Eligible:    m.eligible,
	}
	chars := statsPkg.CharStatsFor(m.session.Units(), m.session.Typed())
	id, err := m.store.InsertResult(context.Background(), rec, chars)
	if err != nil {
		m.errMsg = "result not saved: " + err.Error()
		m.log.Error().Err(err).Msg("failed to save result")
		return
	}
	m.resultID = id
}

func (m *Model) issueCertificate() {
	identity := certificate.Identity{
		Name:          m.inputs[fieldName].Value(),
		Address:       m.inputs[fieldAddress].Value(),
		PhotoPath:     m.inputs[fieldPhoto].Value(),
		SignaturePath: m.inputs[fieldSignature].Value(),
	}
	cert, err := certificate.Issue(m.result, identity, m.now())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	path, err := certificate.Write(m.certDir, cert)
	if err != nil {
		m.errMsg = err.Error()
		m.log.Error().Err(err).Msg("failed to write certificate")
		return
	}
	m.cert = cert
	m.certPath = path
	m.errMsg = ""
	m.phase = phaseIssued
	m.log.Info().Str("certificate", cert.ID).Str("path", path).Msg("certificate issued")

	if m.store == nil || m.resultID == 0 {
		return
	}
	err = m.store.InsertCertificate(context.Background(), model.CertificateRecord{
		ID:            cert.ID,
		ResultID:      m.resultID,
		Name:          cert.Identity.Name,
		Address:       cert.Identity.Address,
		PhotoPath:     cert.Identity.PhotoPath,
		SignaturePath: cert.Identity.SignaturePath,
		IssuedAt:      cert.IssuedAt,
		Path:          path,
	})
	if err != nil {
		m.errMsg = "certificate not recorded: " + err.Error()
		m.log.Error().Err(err).Msg("failed to record certificate")
	}
}

func newIdentityInputs(id certificate.Identity) []textinput.Model {
	prompts := [fieldCount]string{"Name      ", "Address   ", "Photo     ", "Signature "}
	values := [fieldCount]string{id.Name, id.Address, id.PhotoPath, id.SignaturePath}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = prompts[i]
		ti.CharLimit = 256
		ti.SetValue(values[i])
		inputs[i] = ti
	}
	inputs[fieldPhoto].Placeholder = "optional path"
	inputs[fieldSignature].Placeholder = "optional path"
	return inputs
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.phase {
	case phaseTyping:
		content = m.viewTyping()
	case phaseResult:
		content = m.viewResult()
	case phaseForm:
		content = m.viewForm()
	case phaseIssued:
		content = m.viewIssued()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewTyping() string {
	units := m.session.Units()
	if len(units) == 0 {
		return ""
	}
	marks := make([]assess.Mark, len(units))
	for i := range units {
		marks[i] = m.session.Mark(i)
	}
	styled := buildStyledRunes(units, marks)
	header := titleStyle.Render(m.title)
	if m.width == 0 {
		return header + "\n\n" + renderStyledRunes(styled)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styled, contentWidth)
	return header + "\n\n" + lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
}

func (m *Model) viewResult() string {
	r := m.result
	lines := []string{
		titleStyle.Render("Result"),
		"",
		fmt.Sprintf("WPM        %d", r.WordsPerMinute),
		fmt.Sprintf("Accuracy   %d%%", r.AccuracyPercent),
		fmt.Sprintf("Time       %ds", r.TimeTakenUnits),
		fmt.Sprintf("Level      %s", labelOr(r.DifficultyLevel)),
		fmt.Sprintf("Language   %s", labelOr(r.Language)),
		fmt.Sprintf("Finished   %s", r.Reason),
		"",
	}
	help := "r retry · q quit"
	if m.eligible {
		lines = append(lines, fmt.Sprintf("Eligible for a certificate (accuracy >= %d%%)", certificate.MinAccuracy))
		help = "c certificate · " + help
	} else {
		lines = append(lines, fmt.Sprintf("Not eligible: a certificate needs %d%% accuracy", certificate.MinAccuracy))
	}
	if m.errMsg != "" {
		lines = append(lines, warnStyle.Render(m.errMsg))
	}
	lines = append(lines, "", footerStyle.Render(help))
	return resultStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewForm() string {
	lines := []string{titleStyle.Render("Certificate details"), ""}
	for _, in := range m.inputs {
		lines = append(lines, in.View())
	}
	if m.errMsg != "" {
		lines = append(lines, "", warnStyle.Render(m.errMsg))
	}
	lines = append(lines, "", footerStyle.Render("tab next · enter confirm · esc back"))
	return strings.Join(lines, "\n")
}

func (m *Model) viewIssued() string {
	out := certificate.Render(m.cert) + "\nSaved to " + m.certPath
	if m.errMsg != "" {
		out += "\n" + warnStyle.Render(m.errMsg)
	}
	return out + "\n\n" + footerStyle.Render("r retry · q quit")
}

func labelOr(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	results, err := m.store.ListResults(context.Background(), model.StatsConfig{Lang: m.config.Lang})
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to load result stats")
		return
	}
	if len(results) == 0 {
		return
	}
	last := results[len(results)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
	summary := statsPkg.Summarize(results)
	m.bestWPM = summary.BestWPM
	m.count = summary.Count
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.phase == phaseTyping && m.session.RefLen() > 0 {
		progress := m.session.TypedLen() * 100 / m.session.RefLen()
		segments = append(segments,
			fmt.Sprintf("%ds left", m.session.Remaining()),
			fmt.Sprintf("Progress %d%%", progress),
			fmt.Sprintf("Mistakes %d", m.session.Mistakes()),
		)
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", m.lastWPM, m.lastAcc))
	}
	if m.count > 0 {
		segments = append(segments, fmt.Sprintf("Best %d WPM over %d", m.bestWPM, m.count))
	}
	if len(segments) == 0 && m.warning == "" {
		return ""
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.warning != "" {
		footer += "  " + warnStyle.Render(m.warning)
	}
	return footer
}
