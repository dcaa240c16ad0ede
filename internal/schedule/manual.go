package schedule

import (
	"sync"
	"time"
)

// Manual is a Scheduler that only fires when Advance is called. Callbacks run
// synchronously on the caller's goroutine, in due-time order.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	m      *Manual
	at     time.Duration
	period time.Duration
	seq    int
	f      func()
	active bool
}

// NewManual returns a scheduler at elapsed time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	return m.add(d, 0, f)
}

func (m *Manual) Every(d time.Duration, f func()) Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, f)
}

func (m *Manual) add(d, period time.Duration, f func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, period: period, seq: m.seq, f: f, active: true}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves time forward by d, firing every timer that becomes due.
// Timers created by callbacks fire too if they fall within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		if next.period > 0 {
			next.at += next.period
		} else {
			next.active = false
			m.removeLocked(next)
		}
		f := next.f
		m.mu.Unlock()

		f()
	}
}

// Elapsed is the total time advanced so far.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending counts active timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) removeLocked(t *manualTimer) {
	for i, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if !t.active {
		return false
	}
	t.active = false
	t.m.removeLocked(t)
	return true
}
