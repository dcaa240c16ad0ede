package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quran-quiz-service/internal/audio"
	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/game"
	"quran-quiz-service/internal/result"
	"quran-quiz-service/internal/schedule"
)

// SessionRepository abstracts where live game sessions are registered (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *game.Session)
	Get(id string) (*game.Session, bool)
	Delete(id string)
	Len() int
}

// GameService creates and tracks game sessions, one per connected player.
type GameService struct {
	sessions  SessionRepository
	questions game.QuestionSource
	recorder  game.Recorder
	timing    game.Timing
	sched     schedule.Scheduler
	advisor   *result.Advisor
	logger    *zap.Logger
	newID     func() string
}

// Option configures a GameService.
type Option func(*GameService)

// WithRecorders records every finished session with each recorder concurrently.
func WithRecorders(recorders ...game.Recorder) Option {
	return func(s *GameService) {
		if len(recorders) > 0 {
			s.recorder = &Fanout{recorders: recorders, logger: s.logger}
		}
	}
}

func WithTiming(t game.Timing) Option {
	return func(s *GameService) { s.timing = t }
}

// WithScheduler overrides the timer source, e.g. with schedule.Manual in tests.
func WithScheduler(sched schedule.Scheduler) Option {
	return func(s *GameService) { s.sched = sched }
}

func WithAdvisor(a *result.Advisor) Option {
	return func(s *GameService) { s.advisor = a }
}

// WithIDs overrides session id generation.
func WithIDs(newID func() string) Option {
	return func(s *GameService) { s.newID = newID }
}

func NewGameService(store SessionRepository, questions game.QuestionSource, logger *zap.Logger, opts ...Option) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &GameService{
		sessions:  store,
		questions: questions,
		timing:    game.DefaultTiming(),
		sched:     schedule.Real(),
		advisor:   result.NewAdvisor(nil),
		logger:    logger,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession creates and registers a session in the menu phase. Cues are
// played through the caller's emitter.
func (s *GameService) NewSession(cues audio.Emitter) *game.Session {
	session := game.NewSession(game.Config{
		ID:        s.newID(),
		Questions: s.questions,
		Cues:      cues,
		Scheduler: s.sched,
		Timing:    s.timing,
		Advisor:   s.advisor,
		Recorder:  s.recorder,
		Logger:    s.logger,
	})
	s.sessions.Put(session)
	s.logger.Info("session created", zap.String("session_id", session.ID()), zap.Int("active", s.sessions.Len()))
	return session
}

// Session looks up a registered session.
func (s *GameService) Session(id string) (*game.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return session, nil
}

// Close stops the session's timers and unregisters it.
func (s *GameService) Close(id string) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(id)
	s.logger.Info("session closed", zap.String("session_id", id))
}

// Active is the number of registered sessions.
func (s *GameService) Active() int {
	return s.sessions.Len()
}

// Fanout is a game.Recorder that hands a summary to several recorders at once.
// Every recorder runs even when another fails.
type Fanout struct {
	recorders []game.Recorder
	logger    *zap.Logger
}

func NewFanout(logger *zap.Logger, recorders ...game.Recorder) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{recorders: recorders, logger: logger}
}

func (f *Fanout) Record(ctx context.Context, summary game.Summary) error {
	var g errgroup.Group
	for i, rec := range f.recorders {
		i, rec := i, rec
		g.Go(func() error {
			if err := rec.Record(ctx, summary); err != nil {
				f.logger.Warn("recorder failed",
					zap.Int("recorder", i),
					zap.String("session_id", summary.SessionID),
					zap.Error(err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
