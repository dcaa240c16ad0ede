package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quran-quiz-service/internal/audio"
	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/result"
	"quran-quiz-service/internal/schedule"
)

const toPlaying = 3*time.Second + 500*time.Millisecond

type cueLog struct {
	mu   sync.Mutex
	cues []audio.Cue
}

func (l *cueLog) Play(c audio.Cue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cues = append(l.cues, c)
}

func (l *cueLog) take() []audio.Cue {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.cues
	l.cues = nil
	return out
}

type staticSource []domain.Question

func (s staticSource) Questions(context.Context, domain.GameMode) []domain.Question {
	return s
}

type chanRecorder chan Summary

func (r chanRecorder) Record(_ context.Context, summary Summary) error {
	r <- summary
	return nil
}

// questionSet builds n choice questions worth 10 points each; "B" is always correct.
func questionSet(n int) staticSource {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.NewChoice(fmt.Sprintf("q%d", i+1), "Surat apa?", 10, "", []string{"A", "B", "C", "D"}, "B")
	}
	return qs
}

func newTestSession(src QuestionSource, rec Recorder) (*Session, *schedule.Manual, *cueLog) {
	sched := schedule.NewManual()
	cues := &cueLog{}
	s := NewSession(Config{
		ID:        "s1",
		Questions: src,
		Cues:      cues,
		Scheduler: sched,
		Advisor:   result.NewAdvisor(rand.New(rand.NewSource(7))),
		Recorder:  rec,
	})
	return s, sched, cues
}

func startPlaying(t *testing.T, s *Session, sched *schedule.Manual) {
	t.Helper()
	require.NoError(t, s.Start(context.Background(), domain.ModeGuessSurah))
	sched.Advance(toPlaying)
	require.Equal(t, PhasePlaying, s.Snapshot().Phase)
}

func answer(t *testing.T, s *Session, sched *schedule.Manual, option string) {
	t.Helper()
	require.True(t, s.Select(option))
	require.True(t, s.Submit())
	sched.Advance(1500 * time.Millisecond)
}

func TestCountdownTicksThenGo(t *testing.T) {
	s, sched, cues := newTestSession(questionSet(2), nil)
	events, cancel := s.Subscribe()
	defer cancel()
	require.Equal(t, EventState, (<-events).Type)

	require.NoError(t, s.Start(context.Background(), domain.ModeGuessSurah))
	st := s.Snapshot()
	require.Equal(t, PhaseCountdown, st.Phase)
	require.Equal(t, 3, st.Countdown)
	require.Equal(t, []audio.Cue{audio.CueClick, audio.CueTick}, cues.take())

	sched.Advance(time.Second)
	require.Equal(t, 2, s.Snapshot().Countdown)
	sched.Advance(time.Second)
	require.Equal(t, 1, s.Snapshot().Countdown)
	require.Equal(t, []audio.Cue{audio.CueTick, audio.CueTick}, cues.take())

	sched.Advance(time.Second)
	st = s.Snapshot()
	require.Equal(t, 0, st.Countdown)
	require.Equal(t, PhaseCountdown, st.Phase, "grace delay before play")
	require.Equal(t, []audio.Cue{audio.CueCorrect}, cues.take())

	sched.Advance(499 * time.Millisecond)
	require.Equal(t, PhaseCountdown, s.Snapshot().Phase)
	sched.Advance(time.Millisecond)
	st = s.Snapshot()
	require.Equal(t, PhasePlaying, st.Phase)
	require.NotNil(t, st.Question)
	require.Equal(t, "q1", st.Question.Question.ID)
	require.Equal(t, 20, st.Question.TimeRemaining)

	var countdowns []CountdownPayload
	for len(events) > 0 {
		ev := <-events
		if ev.Type == EventCountdown {
			countdowns = append(countdowns, ev.Payload.(CountdownPayload))
		}
	}
	require.Equal(t, []CountdownPayload{{Value: 3}, {Value: 2}, {Value: 1}, {Value: 0, Start: true}}, countdowns)
}

func TestScoreSumsAwardedPoints(t *testing.T) {
	set := questionSet(3)
	set[0].Points = 5
	set[2].Points = 20
	s, sched, _ := newTestSession(set, nil)
	startPlaying(t, s, sched)

	answer(t, s, sched, "B")
	st := s.Snapshot()
	require.Equal(t, 5, st.Score)
	require.Equal(t, 1, st.CorrectCount)
	require.Equal(t, 1, st.Index)

	answer(t, s, sched, "C")
	st = s.Snapshot()
	require.Equal(t, 5, st.Score, "wrong answers award nothing")
	require.Equal(t, 1, st.CorrectCount)

	answer(t, s, sched, "B")
	st = s.Snapshot()
	require.Equal(t, PhaseFinished, st.Phase)
	require.Equal(t, 25, st.Score)
	require.Equal(t, 2, st.CorrectCount)
	require.NotNil(t, st.Result)
	require.Equal(t, 35, st.Result.TotalPoints)
	require.Equal(t, 71, st.Result.Percentage)
	require.NotEmpty(t, st.Result.Advice)
}

func TestVerdictWaitsForRevealDelay(t *testing.T) {
	s, sched, cues := newTestSession(questionSet(2), nil)
	startPlaying(t, s, sched)
	cues.take()

	require.True(t, s.Select("B"))
	require.True(t, s.Submit())
	require.Equal(t, []audio.Cue{audio.CueClick, audio.CueCorrect}, cues.take())

	sched.Advance(1499 * time.Millisecond)
	require.Equal(t, 0, s.Snapshot().Index)
	require.Equal(t, 0, s.Snapshot().Score)
	sched.Advance(time.Millisecond)
	require.Equal(t, 1, s.Snapshot().Index)
	require.Equal(t, 10, s.Snapshot().Score)
	require.Equal(t, 20, s.Snapshot().Question.TimeRemaining, "timer restarts for the next question")
}

func TestTimeoutIgnoresPendingSelection(t *testing.T) {
	s, sched, cues := newTestSession(questionSet(2), nil)
	startPlaying(t, s, sched)
	require.True(t, s.Select("B"))
	cues.take()

	sched.Advance(19 * time.Second)
	require.Equal(t, 1, s.Snapshot().Question.TimeRemaining)
	sched.Advance(time.Second)
	q := s.Snapshot().Question
	require.Equal(t, 0, q.TimeRemaining)
	require.True(t, q.Submitted)
	require.True(t, q.TimedOut)
	require.Equal(t, []audio.Cue{audio.CueWrong}, cues.take())

	require.False(t, s.Select("A"))
	require.False(t, s.Submit())

	sched.Advance(1999 * time.Millisecond)
	require.Equal(t, 0, s.Snapshot().Index)
	sched.Advance(time.Millisecond)
	st := s.Snapshot()
	require.Equal(t, 1, st.Index)
	require.Equal(t, 0, st.Score)
	require.Equal(t, 0, st.CorrectCount)
}

func TestSubmitRequiresSelectionAndIsFinal(t *testing.T) {
	s, sched, _ := newTestSession(questionSet(2), nil)
	startPlaying(t, s, sched)

	require.False(t, s.Submit(), "no selection yet")
	require.False(t, s.Select("Z"), "unknown option")
	require.True(t, s.Select("A"))
	require.True(t, s.Select("B"), "last selection wins")
	require.True(t, s.Submit())

	before := s.Snapshot()
	require.False(t, s.Select("C"))
	require.False(t, s.Submit())
	require.Equal(t, before, s.Snapshot())

	sched.Advance(time.Minute)
	require.Equal(t, 10, s.Snapshot().Score)
}

func TestSurrenderKeepsProgress(t *testing.T) {
	rec := make(chanRecorder, 1)
	s, sched, _ := newTestSession(questionSet(10), rec)
	startPlaying(t, s, sched)

	answer(t, s, sched, "B")
	answer(t, s, sched, "A")
	answer(t, s, sched, "B")
	require.Equal(t, 3, s.Snapshot().Index)

	require.True(t, s.Surrender())
	st := s.Snapshot()
	require.Equal(t, PhaseFinished, st.Phase)
	require.Equal(t, 20, st.Score)
	require.Equal(t, 2, st.CorrectCount)
	require.Equal(t, 10, st.Result.TotalQuestions)
	require.Equal(t, 100, st.Result.TotalPoints)
	require.Equal(t, 20, st.Result.Percentage)
	require.Equal(t, 1, st.Result.Stars)

	select {
	case summary := <-rec:
		require.True(t, summary.Surrendered)
		require.Equal(t, 20, summary.Score)
		require.Equal(t, domain.ModeGuessSurah, summary.Mode)
	case <-time.After(2 * time.Second):
		t.Fatal("summary not recorded")
	}

	require.False(t, s.Surrender(), "only while playing")
}

func TestFinishPlaysWinCueOnce(t *testing.T) {
	s, sched, cues := newTestSession(questionSet(1), nil)
	startPlaying(t, s, sched)
	answer(t, s, sched, "B")
	require.Equal(t, PhaseFinished, s.Snapshot().Phase)
	cues.take()

	sched.Advance(499 * time.Millisecond)
	require.Empty(t, cues.take())
	sched.Advance(time.Millisecond)
	require.Equal(t, []audio.Cue{audio.CueWin}, cues.take())
	sched.Advance(time.Minute)
	require.Empty(t, cues.take())
	require.Zero(t, sched.Pending())
}

func TestResetCancelsEveryTimer(t *testing.T) {
	for _, stop := range []time.Duration{0, time.Second, toPlaying + 5*time.Second} {
		t.Run(stop.String(), func(t *testing.T) {
			s, sched, cues := newTestSession(questionSet(3), nil)
			require.NoError(t, s.Start(context.Background(), domain.ModeWordMeaning))
			sched.Advance(stop)
			if s.Snapshot().Phase == PhasePlaying {
				require.True(t, s.Select("B"))
				require.True(t, s.Submit())
			}

			s.Reset()
			cues.take()
			events, cancel := s.Subscribe()
			defer cancel()
			<-events

			sched.Advance(time.Minute)
			require.Zero(t, sched.Pending())
			require.Empty(t, cues.take())
			require.Empty(t, events)

			st := s.Snapshot()
			require.Equal(t, PhaseMenu, st.Phase)
			require.Zero(t, st.Score)
			require.Zero(t, st.Total)
			require.Nil(t, st.Question)
		})
	}
}

func TestRestartAfterFinish(t *testing.T) {
	s, sched, _ := newTestSession(questionSet(1), nil)
	startPlaying(t, s, sched)
	answer(t, s, sched, "B")
	require.Equal(t, PhaseFinished, s.Snapshot().Phase)

	err := s.Start(context.Background(), domain.ModeGuessSurah)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	s.Reset()
	startPlaying(t, s, sched)
	st := s.Snapshot()
	require.Zero(t, st.Score)
	require.Equal(t, 0, st.Index)
}

type blockingSource struct {
	started chan struct{}
}

func (b blockingSource) Questions(ctx context.Context, _ domain.GameMode) []domain.Question {
	close(b.started)
	<-ctx.Done()
	return questionSet(1)
}

func TestResetDuringLoadingDiscardsLateSet(t *testing.T) {
	src := blockingSource{started: make(chan struct{})}
	s, sched, _ := newTestSession(src, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background(), domain.ModeTajwidKnowledge) }()
	<-src.started
	require.Equal(t, PhaseLoading, s.Snapshot().Phase)

	s.Reset()
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("start did not return after reset")
	}
	sched.Advance(time.Minute)
	require.Equal(t, PhaseMenu, s.Snapshot().Phase)
	require.Zero(t, sched.Pending())
}

func TestSnapshotNeverLeaksAnswer(t *testing.T) {
	s, sched, _ := newTestSession(questionSet(1), nil)
	events, cancel := s.Subscribe()
	defer cancel()
	startPlaying(t, s, sched)

	for len(events) > 0 {
		ev := <-events
		if ev.Type == EventQuestion {
			p := ev.Payload.(QuestionPayload)
			require.Equal(t, []string{"A", "B", "C", "D"}, p.Question.Options)
			require.Equal(t, 20, p.TimeLimit)
		}
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	s, sched, _ := newTestSession(questionSet(2), nil)
	events, cancel := s.Subscribe()
	startPlaying(t, s, sched)
	s.Close()
	cancel()

	for range events {
	}
	sched.Advance(time.Minute)
	require.Zero(t, sched.Pending())
	require.ErrorIs(t, s.Start(context.Background(), domain.ModeGuessSurah), domain.ErrInvalidTransition)
}
