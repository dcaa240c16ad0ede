package game

import "time"

// Timing holds the pacing constants of a session.
type Timing struct {
	CountdownFrom   int           // pre-game countdown start value
	Tick            time.Duration // countdown and question timer period
	GoDelay         time.Duration // pause after the start marker before play
	QuestionSeconds int           // per-question timer, in ticks
	SubmitReveal    time.Duration // delay between submit and verdict callback
	TimeoutReveal   time.Duration // delay between timeout and verdict callback
	WinDelay        time.Duration // delay before the win cue on the result screen
}

// DefaultTiming returns the standard game pacing.
func DefaultTiming() Timing {
	return Timing{
		CountdownFrom:   3,
		Tick:            time.Second,
		GoDelay:         500 * time.Millisecond,
		QuestionSeconds: 20,
		SubmitReveal:    1500 * time.Millisecond,
		TimeoutReveal:   2000 * time.Millisecond,
		WinDelay:        500 * time.Millisecond,
	}
}

// WithDefaults fills zero fields from DefaultTiming.
func (t Timing) WithDefaults() Timing {
	d := DefaultTiming()
	if t.CountdownFrom <= 0 {
		t.CountdownFrom = d.CountdownFrom
	}
	if t.Tick <= 0 {
		t.Tick = d.Tick
	}
	if t.GoDelay <= 0 {
		t.GoDelay = d.GoDelay
	}
	if t.QuestionSeconds <= 0 {
		t.QuestionSeconds = d.QuestionSeconds
	}
	if t.SubmitReveal <= 0 {
		t.SubmitReveal = d.SubmitReveal
	}
	if t.TimeoutReveal <= 0 {
		t.TimeoutReveal = d.TimeoutReveal
	}
	if t.WinDelay <= 0 {
		t.WinDelay = d.WinDelay
	}
	return t
}
