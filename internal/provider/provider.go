// Package provider supplies question sets for a game mode.
package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"quran-quiz-service/internal/domain"
)

// Generator produces a raw question set for a mode. It may fail.
type Generator interface {
	Generate(ctx context.Context, mode domain.GameMode) ([]domain.Question, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, mode domain.GameMode) ([]domain.Question, error)

func (f GeneratorFunc) Generate(ctx context.Context, mode domain.GameMode) ([]domain.Question, error) {
	return f(ctx, mode)
}

// SetSink receives every validated set, e.g. for archiving.
type SetSink interface {
	SaveSet(ctx context.Context, mode domain.GameMode, questions []domain.Question) error
}

// Provider never fails: invalid or failed generations are replaced by Fallback.
type Provider struct {
	gen    Generator
	sink   SetSink
	logger *zap.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithSink archives every validated set.
func WithSink(sink SetSink) Option {
	return func(p *Provider) { p.sink = sink }
}

func New(gen Generator, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{gen: gen, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Questions returns a validated set of at most domain.SetSize questions, or the
// fallback set on any failure.
func (p *Provider) Questions(ctx context.Context, mode domain.GameMode) []domain.Question {
	questions, err := p.generate(ctx, mode)
	if err != nil {
		p.logger.Warn("question generation failed, using fallback",
			zap.String("mode", string(mode)), zap.Error(err))
		return Fallback()
	}
	if p.sink != nil {
		if err := p.sink.SaveSet(ctx, mode, questions); err != nil {
			p.logger.Warn("archive question set", zap.Error(err))
		}
	}
	return questions
}

func (p *Provider) generate(ctx context.Context, mode domain.GameMode) ([]domain.Question, error) {
	if p.gen == nil {
		return nil, fmt.Errorf("no generator configured")
	}
	raw, err := p.gen.Generate(ctx, mode)
	if err != nil {
		return nil, err
	}
	questions, dropped := domain.NormalizeSet(raw)
	for _, err := range dropped {
		p.logger.Debug("dropped generated question", zap.Error(err))
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %d generated, none valid", domain.ErrEmptyQuestionSet, len(raw))
	}
	return questions, nil
}

// Fallback is the deterministic single-question offline set.
func Fallback() []domain.Question {
	q := domain.NewChoice(
		"err-fallback",
		"Mode Offline: Potongan ayat berikut terdapat dalam surat apa?",
		10,
		"إِنَّا أَعْطَيْنَاكَ الْكَوْثَرَ",
		[]string{"Al-Ikhlas", "Al-Kautsar", "Al-Ma'un", "An-Nasr"},
		"Al-Kautsar",
	)
	q.Topic = domain.TopicGuessSurah
	q.DifficultyLevel = 1
	return []domain.Question{q}
}
