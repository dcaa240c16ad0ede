package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/game"
)

// ResultLister reads archived session results.
type ResultLister interface {
	RecentResults(ctx context.Context, limit int) ([]game.Summary, error)
}

type modeInfo struct {
	Mode  domain.GameMode `json:"mode"`
	Title string          `json:"title"`
	Topic domain.Topic    `json:"topic"`
}

// NewMux registers the game endpoints. results may be nil.
func NewMux(ws *WSHandler, results ResultLister, logger *zap.Logger) *http.ServeMux {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("/modes", func(w http.ResponseWriter, r *http.Request) {
		modes := make([]modeInfo, 0, len(domain.Modes))
		for _, m := range domain.Modes {
			modes = append(modes, modeInfo{Mode: m, Title: m.Title(), Topic: m.Topic()})
		}
		writeJSON(w, http.StatusOK, modes)
	})
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		if results == nil {
			writeJSON(w, http.StatusOK, []game.Summary{})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := results.RecentResults(r.Context(), limit)
		if err != nil {
			logger.Error("list results", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "results unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, list)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
