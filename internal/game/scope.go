package game

import (
	"sync"
	"time"

	"quran-quiz-service/internal/schedule"
)

// scope owns the timers of one state's lifetime. Callbacks run with mu held and
// are dropped once their handle is stopped or the scope is released, so a timer
// that already fired but is still waiting on mu cannot touch a later state.
// after, every and release must be called with mu held.
type scope struct {
	mu       sync.Locker
	sched    schedule.Scheduler
	handles  []*handle
	released bool
}

type handle struct {
	timer   schedule.Timer
	stopped bool
}

// stop must be called with the owning scope's mutex held.
func (h *handle) stop() {
	if h.stopped {
		return
	}
	h.stopped = true
	h.timer.Stop()
}

func newScope(mu sync.Locker, sched schedule.Scheduler) *scope {
	return &scope{mu: mu, sched: sched}
}

func (s *scope) after(d time.Duration, f func()) *handle {
	h := &handle{}
	h.timer = s.sched.AfterFunc(d, s.guard(h, func() {
		h.stopped = true
		f()
	}))
	s.handles = append(s.handles, h)
	return h
}

func (s *scope) every(d time.Duration, f func()) *handle {
	h := &handle{}
	h.timer = s.sched.Every(d, s.guard(h, f))
	s.handles = append(s.handles, h)
	return h
}

func (s *scope) guard(h *handle, f func()) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.released || h.stopped {
			return
		}
		f()
	}
}

func (s *scope) release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	for _, h := range s.handles {
		h.stop()
	}
	s.handles = nil
}
