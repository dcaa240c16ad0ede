package audio

import (
	"io"
	"strings"
	"sync"
)

// SinkBackend hands cues to a transport; the remote client synthesizes the tones.
type SinkBackend struct {
	send func(c Cue, tones []Tone) error
}

func NewSinkBackend(send func(c Cue, tones []Tone) error) *SinkBackend {
	return &SinkBackend{send: send}
}

func (b *SinkBackend) Play(c Cue, tones []Tone) error {
	return b.send(c, tones)
}

// BellBackend rings the terminal bell once per tone burst.
type BellBackend struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellBackend(w io.Writer) *BellBackend {
	return &BellBackend{w: w}
}

func (b *BellBackend) Play(_ Cue, tones []Tone) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, strings.Repeat("\a", len(tones)))
	return err
}
