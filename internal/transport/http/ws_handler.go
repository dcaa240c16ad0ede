package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quran-quiz-service/internal/app"
	"quran-quiz-service/internal/audio"
	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/game"
)

type WSHandler struct {
	service  *app.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode string `json:"mode"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type mutedPayload struct {
	Muted bool `json:"muted"`
}

type cuePayload struct {
	Cue   audio.Cue     `json:"cue"`
	Tones []toneMessage `json:"tones"`
}

// toneMessage is audio.Tone with millisecond timings for Web Audio clients.
type toneMessage struct {
	Frequency  float64        `json:"frequency"`
	Waveform   audio.Waveform `json:"waveform"`
	DurationMS int64          `json:"durationMs"`
	OffsetMS   int64          `json:"offsetMs"`
	Volume     float64        `json:"volume"`
}

// outbox serializes writes to one connection. Sends never block so they are
// safe from timer callbacks holding the session lock.
type outbox struct {
	mu     sync.Mutex
	closed bool
	ch     chan outboundMessage[any]
}

var errOutboxFull = errors.New("outbound buffer full")

func (o *outbox) send(typ string, payload any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return websocket.ErrCloseSent
	}
	select {
	case o.ch <- outboundMessage[any]{Type: typ, Payload: payload}:
		return nil
	default:
		return errOutboxFull
	}
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}

// ServeWS upgrades HTTP requests to websockets and runs one game session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	out := &outbox{ch: make(chan outboundMessage[any], 256)}
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range out.ch {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				// keep draining so senders never see a full buffer from a dead writer
				for range out.ch {
				}
				return
			}
		}
	}()

	cues := audio.NewService(func() (audio.Backend, error) {
		return audio.NewSinkBackend(func(c audio.Cue, tones []audio.Tone) error {
			return out.send("cue", cuePayload{Cue: c, Tones: toneMessages(tones)})
		}), nil
	}, h.logger)

	session := h.service.NewSession(cues)
	logger := h.logger.With(zap.String("session_id", session.ID()))
	events, cancel := session.Subscribe()

	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		for ev := range events {
			if err := out.send(string(ev.Type), ev.Payload); err != nil {
				logger.Debug("event dropped", zap.String("type", string(ev.Type)), zap.Error(err))
			}
		}
	}()

	ctx, stop := context.WithCancel(r.Context())
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(ctx, session, cues, out, inbound)
	}

	stop()
	cancel()
	h.service.Close(session.ID())
	<-forwardDone
	out.close()
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, session *game.Session, cues *audio.Service, out *outbox, in inboundMessage) {
	sendError := func(msg string) { _ = out.send("error", errorPayload{Message: msg}) }

	switch in.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			sendError("invalid start payload")
			return
		}
		mode, err := domain.ParseMode(payload.Mode)
		if err != nil {
			sendError(err.Error())
			return
		}
		// loading blocks; keep reading so "menu" can cancel it
		go func() {
			err := session.Start(ctx, mode)
			if err != nil && !errors.Is(err, game.ErrSuperseded) {
				sendError(err.Error())
			}
		}()
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			sendError("invalid select payload")
			return
		}
		session.Select(payload.Option)
	case "submit":
		session.Submit()
	case "surrender":
		session.Surrender()
	case "menu":
		session.Reset()
	case "mute":
		_ = out.send("muted", mutedPayload{Muted: cues.ToggleMute()})
	default:
		sendError("unsupported message type")
	}
}

func toneMessages(tones []audio.Tone) []toneMessage {
	msgs := make([]toneMessage, len(tones))
	for i, t := range tones {
		msgs[i] = toneMessage{
			Frequency:  t.Frequency,
			Waveform:   t.Waveform,
			DurationMS: t.Duration.Milliseconds(),
			OffsetMS:   t.Offset.Milliseconds(),
			Volume:     t.Volume,
		}
	}
	return msgs
}
