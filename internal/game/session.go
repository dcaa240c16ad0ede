package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"quran-quiz-service/internal/audio"
	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/result"
	"quran-quiz-service/internal/schedule"
)

// ErrSuperseded is returned by Start when the session left Loading before the
// questions arrived; the late set is discarded.
var ErrSuperseded = errors.New("session reset while loading")

// QuestionSource returns a question set for a mode. Implementations must not
// fail; they substitute a fallback set instead.
type QuestionSource interface {
	Questions(ctx context.Context, mode domain.GameMode) []domain.Question
}

// Recorder persists or publishes finished sessions.
type Recorder interface {
	Record(ctx context.Context, summary Summary) error
}

// Config wires a Session. Questions is required; the rest have defaults.
type Config struct {
	ID        string
	Questions QuestionSource
	Cues      audio.Emitter
	Scheduler schedule.Scheduler
	Timing    Timing
	Advisor   *result.Advisor
	Recorder  Recorder
	Logger    *zap.Logger
	Now       func() time.Time
}

// Session is the top-level game state machine:
// menu -> loading -> countdown -> playing -> finished, with Reset back to menu
// from any phase.
type Session struct {
	id        string
	questions QuestionSource
	cues      audio.Emitter
	sched     schedule.Scheduler
	timing    Timing
	advisor   *result.Advisor
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time

	mu           sync.Mutex
	phase        Phase
	mode         domain.GameMode
	set          []domain.Question
	index        int
	score        int
	correctCount int
	countdown    int
	current      *QuestionController
	phaseScope   *scope
	loadEpoch    uint64
	cancelLoad   context.CancelFunc
	final        *result.Result
	startedAt    time.Time
	closed       bool
	subscribers  map[chan Event]struct{}
}

func NewSession(cfg Config) *Session {
	if cfg.Cues == nil {
		cfg.Cues = audio.Nop{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = schedule.Real()
	}
	if cfg.Advisor == nil {
		cfg.Advisor = result.NewAdvisor(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Session{
		id:          cfg.ID,
		questions:   cfg.Questions,
		cues:        cfg.Cues,
		sched:       cfg.Scheduler,
		timing:      cfg.Timing.WithDefaults(),
		advisor:     cfg.Advisor,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger.With(zap.String("session_id", cfg.ID)),
		now:         cfg.Now,
		phase:       PhaseMenu,
		subscribers: make(map[chan Event]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start leaves the menu, fetches questions for mode and begins the countdown.
// It blocks while questions load; Reset cancels the load.
func (s *Session) Start(ctx context.Context, mode domain.GameMode) error {
	s.mu.Lock()
	if s.closed || s.phase != PhaseMenu {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: start from %s", domain.ErrInvalidTransition, phase)
	}
	s.cues.Play(audio.CueClick)
	s.loadEpoch++
	epoch := s.loadEpoch
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.mode = mode
	s.setPhaseLocked(PhaseLoading)
	s.mu.Unlock()

	questions := s.questions.Questions(loadCtx, mode)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.phase != PhaseLoading || s.loadEpoch != epoch {
		return ErrSuperseded
	}
	s.cancelLoad = nil
	if len(questions) == 0 {
		s.mode = ""
		s.setPhaseLocked(PhaseMenu)
		return domain.ErrEmptyQuestionSet
	}

	s.set = questions
	s.index = 0
	s.score = 0
	s.correctCount = 0
	s.final = nil
	s.startedAt = s.now()
	s.enterCountdownLocked()
	return nil
}

// Select forwards a selection to the active question.
func (s *Session) Select(option string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePlaying || s.current == nil {
		return false
	}
	return s.current.Select(option)
}

// Submit submits the active question's selection.
func (s *Session) Submit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePlaying || s.current == nil {
		return false
	}
	return s.current.Submit()
}

// Surrender ends a game in progress, keeping the score earned so far.
func (s *Session) Surrender() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePlaying {
		return false
	}
	s.cues.Play(audio.CueClick)
	s.finishLocked(true)
	return true
}

// Reset returns to the menu from any phase, cancelling timers and any pending load.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cues.Play(audio.CueClick)
	s.resetLocked()
	s.setPhaseLocked(PhaseMenu)
}

// Close tears the session down and closes all subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resetLocked()
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel of session events, starting with a state snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- Event{Type: EventState, Payload: s.snapshotLocked()}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) enterCountdownLocked() {
	s.setPhaseLocked(PhaseCountdown)
	sc := s.newPhaseScopeLocked()
	s.countdown = s.timing.CountdownFrom
	s.cues.Play(audio.CueTick)
	s.emitLocked(Event{Type: EventCountdown, Payload: CountdownPayload{Value: s.countdown}})

	var ticker *handle
	ticker = sc.every(s.timing.Tick, func() {
		if s.countdown <= 1 {
			ticker.stop()
			s.countdown = 0
			s.cues.Play(audio.CueCorrect)
			s.emitLocked(Event{Type: EventCountdown, Payload: CountdownPayload{Value: 0, Start: true}})
			sc.after(s.timing.GoDelay, s.enterPlayingLocked)
			return
		}
		s.countdown--
		s.cues.Play(audio.CueTick)
		s.emitLocked(Event{Type: EventCountdown, Payload: CountdownPayload{Value: s.countdown}})
	})
}

func (s *Session) enterPlayingLocked() {
	s.phaseScope.release()
	s.phaseScope = nil
	s.setPhaseLocked(PhasePlaying)
	s.index = 0
	s.startQuestionLocked()
}

func (s *Session) startQuestionLocked() {
	q := s.set[s.index]
	s.current = newQuestionController(
		q,
		s.index,
		len(s.set),
		s.timing,
		s.cues,
		newScope(&s.mu, s.sched),
		s.emitLocked,
		s.onVerdictLocked,
	)
	s.current.start()
}

// onVerdictLocked runs inside the question's reveal timer, with mu held.
func (s *Session) onVerdictLocked(correct bool) {
	if s.phase != PhasePlaying {
		return
	}
	if correct {
		s.score += s.set[s.index].Points
		s.correctCount++
	}
	s.emitLocked(Event{Type: EventScore, Payload: ScorePayload{Score: s.score, CorrectCount: s.correctCount}})

	s.current.close()
	s.current = nil
	if s.index >= len(s.set)-1 {
		s.finishLocked(false)
		return
	}
	s.index++
	s.startQuestionLocked()
}

func (s *Session) finishLocked(surrendered bool) {
	s.releaseTimersLocked()

	r := result.Evaluate(s.score, domain.TotalPoints(s.set), s.correctCount, len(s.set))
	r.Advice = s.advisor.Pick()
	s.final = &r
	s.setPhaseLocked(PhaseFinished)
	s.emitLocked(Event{Type: EventFinished, Payload: FinishedPayload{Result: r, Surrendered: surrendered}})

	sc := s.newPhaseScopeLocked()
	sc.after(s.timing.WinDelay, func() { s.cues.Play(audio.CueWin) })

	if s.recorder != nil {
		summary := Summary{
			SessionID:      s.id,
			Mode:           s.mode,
			Score:          r.Score,
			TotalPoints:    r.TotalPoints,
			CorrectCount:   r.CorrectCount,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			Stars:          r.Stars,
			Surrendered:    surrendered,
			StartedAt:      s.startedAt,
			FinishedAt:     s.now(),
		}
		go s.record(summary)
	}
}

func (s *Session) record(summary Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.recorder.Record(ctx, summary); err != nil {
		s.logger.Error("record session result", zap.Error(err))
	}
}

func (s *Session) resetLocked() {
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.loadEpoch++
	s.releaseTimersLocked()
	s.mode = ""
	s.set = nil
	s.index = 0
	s.score = 0
	s.correctCount = 0
	s.countdown = 0
	s.final = nil
}

func (s *Session) releaseTimersLocked() {
	if s.current != nil {
		s.current.close()
		s.current = nil
	}
	s.phaseScope.release()
	s.phaseScope = nil
}

func (s *Session) newPhaseScopeLocked() *scope {
	s.phaseScope.release()
	s.phaseScope = newScope(&s.mu, s.sched)
	return s.phaseScope
}

func (s *Session) setPhaseLocked(p Phase) {
	s.phase = p
	s.logger.Debug("session phase", zap.String("phase", string(p)))
	s.emitLocked(Event{Type: EventPhase, Payload: PhasePayload{Phase: p, Mode: s.mode}})
}

func (s *Session) emitLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop its oldest event to make room
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (s *Session) snapshotLocked() State {
	st := State{
		ID:           s.id,
		Phase:        s.phase,
		Mode:         s.mode,
		Countdown:    s.countdown,
		Index:        s.index,
		Total:        len(s.set),
		Score:        s.score,
		CorrectCount: s.correctCount,
		TotalPoints:  domain.TotalPoints(s.set),
	}
	if s.current != nil {
		st.Question = s.current.state()
	}
	if s.final != nil {
		r := *s.final
		st.Result = &r
	}
	return st
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, summary Summary) error

func (f RecorderFunc) Record(ctx context.Context, summary Summary) error {
	return f(ctx, summary)
}
