package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrNoBackend is returned by an Opener when no audio output exists.
var ErrNoBackend = errors.New("audio backend unavailable")

// Emitter is the capability the game uses to trigger cues.
type Emitter interface {
	Play(c Cue)
}

// Backend renders tones. Play must not block for the duration of the sound.
type Backend interface {
	Play(c Cue, tones []Tone) error
}

// Opener lazily creates a backend; it is retried until it succeeds.
type Opener func() (Backend, error)

// Nop is an Emitter that drops every cue.
type Nop struct{}

func (Nop) Play(Cue) {}

// Service gates cues behind a mute flag and owns the backend handle.
type Service struct {
	open   Opener
	logger *zap.Logger
	muted  atomic.Bool

	mu      sync.Mutex
	backend Backend
}

func NewService(open Opener, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{open: open, logger: logger}
}

// ToggleMute flips the mute flag and returns the new state.
func (s *Service) ToggleMute() bool {
	for {
		old := s.muted.Load()
		if s.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Muted reports the current mute state.
func (s *Service) Muted() bool {
	return s.muted.Load()
}

// Play emits a cue unless muted. Backend failures are logged, never returned.
func (s *Service) Play(c Cue) {
	if s.muted.Load() {
		return
	}
	backend := s.ensureBackend()
	if backend == nil {
		return
	}
	if err := safePlay(backend, c); err != nil {
		s.logger.Debug("audio cue dropped", zap.String("cue", string(c)), zap.Error(err))
	}
}

func (s *Service) ensureBackend() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		return s.backend
	}
	if s.open == nil {
		return nil
	}
	backend, err := s.open()
	if err != nil || backend == nil {
		s.logger.Warn("audio backend unavailable", zap.Error(err))
		return nil
	}
	s.backend = backend
	return backend
}

func safePlay(b Backend, c Cue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audio backend panic: %v", r)
		}
	}()
	return b.Play(c, Voice(c))
}
