package assess

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for soft warnings and lifecycle events.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithUnit sets the comparison unit. The default is UnitRune.
func WithUnit(u Unit) Option {
	return func(s *Session) {
		s.unit = u
	}
}

// Session is one bounded attempt at typing a reference text.
//
// A Session is not safe for concurrent use; the host delivers input and
// ticks from a single event loop.
type Session struct {
	presenter Presenter
	log       zerolog.Logger
	unit      Unit

	id        string
	ref       Reference
	units     []string
	typed     []string
	limit     int
	remaining int
	mistakes  int

	started    bool
	active     bool
	closed     bool
	done       bool
	counting   bool
	fullscreen bool
	result     Result
}

// New returns an idle session. Start must be called before input is accepted.
func New(p Presenter, opts ...Option) *Session {
	if p == nil {
		p = nopPresenter{}
	}
	s := &Session{
		presenter: p,
		log:       zerolog.Nop(),
		limit:     DefaultTimeLimit,
		remaining: DefaultTimeLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start resets the session for a new attempt at ref. It may be called any
// number of times; resources held by an unfinished previous attempt are
// released first.
func (s *Session) Start(ref Reference, timeLimit int) {
	s.release()
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	s.id = uuid.NewString()
	s.ref = ref
	s.units = s.unit.Split(ref.Text)
	s.typed = nil
	s.limit = timeLimit
	s.remaining = timeLimit
	s.mistakes = 0
	s.started = true
	s.active = false
	s.closed = false
	s.done = false
	s.result = Result{}
	s.log.Debug().
		Str("session", s.id).
		Int("chars", len(s.units)).
		Int("limit", timeLimit).
		Str("unit", s.unit.String()).
		Msg("session started")
}

// OnInputChanged accepts the full typed text so far. It returns the Result
// and true when this call finalized the session. Calls before Start, after
// finalization or after Close are ignored.
func (s *Session) OnInputChanged(typed string) (Result, bool) {
	if !s.accepting() {
		return Result{}, false
	}
	units := s.unit.Split(typed)
	if len(units) > len(s.units) {
		units = units[:len(s.units)]
	}
	if !s.active {
		s.activate()
	}
	s.typed = units
	s.mistakes = countMistakes(s.units, s.typed)
	if len(s.typed) == len(s.units) {
		return s.finalize(ReasonCompleted), true
	}
	return Result{}, false
}

// OnClockTick advances the countdown by one unit. Hosts deliver ticks only
// while the session is active, but a tick is honoured whenever the session
// is still accepting. It returns the Result and true when the countdown
// expired on this tick.
func (s *Session) OnClockTick() (Result, bool) {
	if !s.accepting() || s.remaining <= 0 {
		return Result{}, false
	}
	s.remaining--
	if s.remaining == 0 {
		return s.finalize(ReasonTimeout), true
	}
	return Result{}, false
}

// Close abandons the session, stopping the countdown and leaving fullscreen
// if either is still held. Further input and ticks are ignored until the
// next Start. Close is idempotent.
func (s *Session) Close() {
	if s.started && !s.done && !s.closed {
		s.log.Debug().Str("session", s.id).Int("typed", len(s.typed)).Msg("session abandoned")
	}
	s.closed = true
	s.active = false
	s.release()
}

func (s *Session) accepting() bool {
	return s.started && !s.done && !s.closed
}

func (s *Session) activate() {
	s.active = true
	s.presenter.StartCountdown()
	s.counting = true
	if err := s.presenter.EnterFullscreen(); err != nil {
		err = fmt.Errorf("fullscreen request failed: %w", err)
		s.log.Warn().Err(err).Str("session", s.id).Msg("continuing without fullscreen")
		s.presenter.Warn(err)
		return
	}
	s.fullscreen = true
}

func (s *Session) finalize(reason Reason) Result {
	taken := s.limit - s.remaining
	typed := len(s.typed)
	s.result = Result{
		WordsPerMinute:  NetWPM(typed, s.mistakes, taken),
		AccuracyPercent: Accuracy(typed, s.mistakes),
		TimeTakenUnits:  taken,
		DifficultyLevel: s.ref.Difficulty,
		Language:        s.ref.Language,
		TypedChars:      typed,
		Mistakes:        s.mistakes,
		Reason:          reason,
	}
	s.done = true
	s.active = false
	s.release()
	s.log.Info().
		Str("session", s.id).
		Stringer("reason", reason).
		Int("wpm", s.result.WordsPerMinute).
		Int("accuracy", s.result.AccuracyPercent).
		Int("time_taken", taken).
		Msg("session finalized")
	return s.result
}

func (s *Session) release() {
	if s.counting {
		s.presenter.StopCountdown()
		s.counting = false
	}
	if s.fullscreen {
		if err := s.presenter.ExitFullscreen(); err != nil {
			s.log.Warn().Err(err).Str("session", s.id).Msg("failed to leave fullscreen")
		}
		s.fullscreen = false
	}
}

// ID identifies the current attempt. It changes on every Start.
func (s *Session) ID() string { return s.id }

// Reference returns the reference of the current attempt.
func (s *Session) Reference() Reference { return s.ref }

// Remaining returns the countdown value.
func (s *Session) Remaining() int { return s.remaining }

// TimeLimit returns the time budget of the current attempt.
func (s *Session) TimeLimit() int { return s.limit }

// TypedLen returns the number of typed characters.
func (s *Session) TypedLen() int { return len(s.typed) }

// RefLen returns the number of reference characters.
func (s *Session) RefLen() int { return len(s.units) }

// Mistakes returns the current mismatch count.
func (s *Session) Mistakes() int { return s.mistakes }

// Active reports whether the countdown is running.
func (s *Session) Active() bool { return s.active }

// Finalized reports whether a Result has been produced.
func (s *Session) Finalized() bool { return s.done }

// Result returns the terminal Result once the session is finalized.
func (s *Session) Result() (Result, bool) {
	return s.result, s.done
}

// Units returns a copy of the reference split into characters.
func (s *Session) Units() []string {
	return append([]string(nil), s.units...)
}

// Typed returns a copy of the typed characters.
func (s *Session) Typed() []string {
	return append([]string(nil), s.typed...)
}

// Mark classifies reference position i.
func (s *Session) Mark(i int) Mark {
	switch {
	case i < 0 || i >= len(s.units):
		return MarkPending
	case i < len(s.typed):
		if s.typed[i] == s.units[i] {
			return MarkCorrect
		}
		return MarkIncorrect
	case i == len(s.typed) && s.accepting():
		return MarkCursor
	default:
		return MarkPending
	}
}
