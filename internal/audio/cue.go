// Package audio emits short synthesized feedback tones for gameplay events.
package audio

import "time"

// Cue is a gameplay feedback sound.
type Cue string

const (
	CueClick   Cue = "click"
	CueTick    Cue = "tick"
	CueCorrect Cue = "correct"
	CueWrong   Cue = "wrong"
	CueWin     Cue = "win"
)

// Cues lists every cue.
var Cues = []Cue{CueClick, CueTick, CueCorrect, CueWrong, CueWin}

// Waveform is an oscillator shape.
type Waveform string

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
	Triangle Waveform = "triangle"
)

// Tone is one burst of a cue. Offset is relative to the start of the cue.
type Tone struct {
	Frequency float64       `json:"frequency"`
	Waveform  Waveform      `json:"waveform"`
	Duration  time.Duration `json:"duration"`
	Offset    time.Duration `json:"offset"`
	Volume    float64       `json:"volume"`
}

const (
	noteC5 = 523.25
	noteE5 = 659.25
	noteG5 = 783.99
)

var voices = map[Cue][]Tone{
	// ascending C major
	CueCorrect: {
		{Frequency: noteC5, Waveform: Sine, Duration: 300 * time.Millisecond, Volume: 0.1},
		{Frequency: noteE5, Waveform: Sine, Duration: 300 * time.Millisecond, Offset: 100 * time.Millisecond, Volume: 0.1},
		{Frequency: noteG5, Waveform: Sine, Duration: 600 * time.Millisecond, Offset: 200 * time.Millisecond, Volume: 0.1},
	},
	CueWrong: {
		{Frequency: 150, Waveform: Sawtooth, Duration: 400 * time.Millisecond, Volume: 0.05},
		{Frequency: 140, Waveform: Sawtooth, Duration: 400 * time.Millisecond, Offset: 100 * time.Millisecond, Volume: 0.05},
	},
	CueClick: {
		{Frequency: 800, Waveform: Triangle, Duration: 50 * time.Millisecond, Volume: 0.05},
	},
	CueTick: {
		{Frequency: 600, Waveform: Sine, Duration: 100 * time.Millisecond, Volume: 0.1},
	},
	CueWin: {
		{Frequency: noteC5, Waveform: Square, Duration: 200 * time.Millisecond, Volume: 0.05},
		{Frequency: noteC5, Waveform: Square, Duration: 200 * time.Millisecond, Offset: 100 * time.Millisecond, Volume: 0.05},
		{Frequency: noteC5, Waveform: Square, Duration: 200 * time.Millisecond, Offset: 200 * time.Millisecond, Volume: 0.05},
		{Frequency: noteE5, Waveform: Square, Duration: 600 * time.Millisecond, Offset: 300 * time.Millisecond, Volume: 0.05},
		{Frequency: noteG5, Waveform: Square, Duration: 600 * time.Millisecond, Offset: 600 * time.Millisecond, Volume: 0.05},
	},
}

// Voice returns the tone bursts of a cue.
func Voice(c Cue) []Tone {
	return append([]Tone(nil), voices[c]...)
}
