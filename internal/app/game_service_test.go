package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-quiz-service/internal/app"
	"quran-quiz-service/internal/audio"
	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/game"
	"quran-quiz-service/internal/infra/memory"
	"quran-quiz-service/internal/provider"
	"quran-quiz-service/internal/schedule"
)

func TestNewSessionRegistersAndCloses(t *testing.T) {
	store := memory.NewSessionStore()
	service := app.NewGameService(store, provider.New(nil, nil), nil, app.WithIDs(func() string { return "s-1" }))

	session := service.NewSession(audio.Nop{})
	assert.Equal(t, "s-1", session.ID())
	assert.Equal(t, 1, service.Active())

	got, err := service.Session("s-1")
	require.NoError(t, err)
	assert.Same(t, session, got)

	service.Close("s-1")
	_, err = service.Session("s-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Zero(t, service.Active())
}

func TestFallbackSessionIsPlayable(t *testing.T) {
	sched := schedule.NewManual()
	summaries := make(chan game.Summary, 1)
	failing := provider.GeneratorFunc(func(context.Context, domain.GameMode) ([]domain.Question, error) {
		return nil, errors.New("network down")
	})
	service := app.NewGameService(
		memory.NewSessionStore(),
		provider.New(failing, nil),
		nil,
		app.WithScheduler(sched),
		app.WithRecorders(game.RecorderFunc(func(_ context.Context, s game.Summary) error {
			summaries <- s
			return nil
		})),
	)

	session := service.NewSession(audio.Nop{})
	require.NoError(t, session.Start(context.Background(), domain.ModeGuessSurah))
	sched.Advance(3*time.Second + 500*time.Millisecond)

	snap := session.Snapshot()
	require.Equal(t, game.PhasePlaying, snap.Phase)
	require.Equal(t, 1, snap.Total)
	require.NotNil(t, snap.Question)
	assert.Equal(t, "err-fallback", snap.Question.Question.ID)

	require.True(t, session.Select("Al-Kautsar"))
	require.True(t, session.Submit())
	sched.Advance(1500 * time.Millisecond)

	snap = session.Snapshot()
	require.Equal(t, game.PhaseFinished, snap.Phase)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 10, snap.Result.Score)
	assert.Equal(t, 100, snap.Result.Percentage)
	assert.Equal(t, 3, snap.Result.Stars)

	select {
	case s := <-summaries:
		assert.Equal(t, session.ID(), s.SessionID)
		assert.Equal(t, domain.ModeGuessSurah, s.Mode)
		assert.False(t, s.Surrendered)
	case <-time.After(2 * time.Second):
		t.Fatal("expected summary to be recorded")
	}
}

func TestFanoutRunsEveryRecorder(t *testing.T) {
	var calls atomic.Int32
	ok := game.RecorderFunc(func(context.Context, game.Summary) error {
		calls.Add(1)
		return nil
	})
	broken := game.RecorderFunc(func(context.Context, game.Summary) error {
		calls.Add(1)
		return errors.New("broker unreachable")
	})

	err := app.NewFanout(nil, broken, ok, ok).Record(context.Background(), game.Summary{SessionID: "s-1"})
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())
}
