package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quran-quiz-service/internal/app"
	"quran-quiz-service/internal/audio"
	"quran-quiz-service/internal/config"
	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/game"
	"quran-quiz-service/internal/infra/memory"
	"quran-quiz-service/internal/logging"
)

// NewPlayCmd runs a single-player game in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		Long: "Play the quiz in the terminal.\n\n" +
			"Type an option number to select it, s to submit, q to surrender,\n" +
			"m to toggle sound, r to return to the menu and x to exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameMode, err := domain.ParseMode(mode)
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), *configPath, gameMode, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeGuessSurah), "game mode: guess-surah, complete-verse, tajwid-knowledge, word-meaning")
	return cmd
}

func runPlay(ctx context.Context, configPath string, mode domain.GameMode, in io.Reader, out io.Writer) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if level == "" {
		level = "error"
	}
	logger, err := logging.New(level, "development")
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	questions := buildQuestions(ctx, cfg, logger, nil, nil)
	service := app.NewGameService(memory.NewSessionStore(), questions, logger, app.WithTiming(gameTiming(cfg)))

	cues := audio.NewService(func() (audio.Backend, error) {
		return audio.NewBellBackend(os.Stderr), nil
	}, logger)
	session := service.NewSession(cues)
	defer service.Close(session.ID())

	events, unsubscribe := session.Subscribe()
	defer unsubscribe()
	go func() {
		for ev := range events {
			render(out, ev)
		}
	}()

	start := func() {
		fmt.Fprintf(out, "Memuat soal %s...\n", mode.Title())
		go func() {
			if err := session.Start(ctx, mode); err != nil && !errors.Is(err, game.ErrSuperseded) {
				logger.Warn("start game", zap.Error(err))
				fmt.Fprintf(out, "Gagal memulai: %v\n", err)
			}
		}()
	}
	start()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "s":
			session.Submit()
		case "q":
			session.Surrender()
		case "m":
			if cues.ToggleMute() {
				fmt.Fprintln(out, "Suara dimatikan")
			} else {
				fmt.Fprintln(out, "Suara dinyalakan")
			}
		case "r":
			session.Reset()
			start()
		case "x":
			return nil
		default:
			n, err := strconv.Atoi(input)
			if err != nil {
				fmt.Fprintln(out, "Perintah tidak dikenal")
				continue
			}
			snap := session.Snapshot()
			if snap.Question == nil || n < 1 || n > len(snap.Question.Question.Options) {
				continue
			}
			session.Select(snap.Question.Question.Options[n-1])
		}
	}
	return scanner.Err()
}

func render(out io.Writer, ev game.Event) {
	switch p := ev.Payload.(type) {
	case game.CountdownPayload:
		if p.Start {
			fmt.Fprintln(out, "Mulai!")
		} else {
			fmt.Fprintf(out, "%d...\n", p.Value)
		}
	case game.QuestionPayload:
		q := p.Question
		fmt.Fprintf(out, "\nSoal %d/%d  (%d poin, %d detik)\n%s\n", p.Index+1, p.Total, q.Points, p.TimeLimit, q.Text)
		switch {
		case q.PromptMedia != "":
			fmt.Fprintf(out, "  %s\n", q.PromptMedia)
		case q.Kind == domain.KindFillBlank:
			fmt.Fprintf(out, "  %s ____ %s\n", q.PrefixText, q.SuffixText)
		}
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
	case game.TimerPayload:
		if p.TimeRemaining <= 5 && p.TimeRemaining > 0 {
			fmt.Fprintf(out, "  sisa %d detik\n", p.TimeRemaining)
		}
	case game.SelectedPayload:
		fmt.Fprintf(out, "  dipilih: %s (s untuk kirim)\n", p.Option)
	case game.VerdictPayload:
		switch {
		case p.TimedOut:
			fmt.Fprintf(out, "Waktu Habis! Jawaban: %s\n", p.Answer)
		case p.Correct:
			fmt.Fprintln(out, "Benar!")
		default:
			fmt.Fprintf(out, "Salah. Jawaban: %s\n", p.Answer)
		}
	case game.ScorePayload:
		fmt.Fprintf(out, "Skor: %d\n", p.Score)
	case game.FinishedPayload:
		r := p.Result
		fmt.Fprintf(out, "\nSelesai! Skor %d/%d (%d%%) %s\n", r.Score, r.TotalPoints, r.Percentage, strings.Repeat("*", r.Stars))
		fmt.Fprintf(out, "Benar %d dari %d soal\n%s\n", r.CorrectCount, r.TotalQuestions, r.Advice)
		fmt.Fprintln(out, "r untuk main lagi, x untuk keluar")
	}
}
