// Package schedule abstracts one-shot and repeating timers so game timing can be
// driven by the wall clock in production and by hand in tests.
package schedule

import (
	"sync"
	"time"
)

// Timer is a cancellable timer handle.
type Timer interface {
	// Stop prevents future firings. It reports whether the timer was active.
	Stop() bool
}

// Scheduler creates timers whose callbacks run on their own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// Real returns a Scheduler backed by package time.
func Real() Scheduler {
	return realScheduler{}
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realScheduler) Every(d time.Duration, f func()) Timer {
	t := &ticker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
