package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quran-quiz-service/internal/domain"
)

// SetCache stores ready-to-play question sets per mode. Sets are single-use.
type SetCache interface {
	Push(ctx context.Context, mode domain.GameMode, questions []domain.Question) error
	Pop(ctx context.Context, mode domain.GameMode) ([]domain.Question, bool, error)
	Len(ctx context.Context, mode domain.GameMode) (int, error)
}

// Pool is a Generator that serves pre-generated sets and refills itself in the
// background, one refill per mode at a time.
type Pool struct {
	gen     Generator
	cache   SetCache
	size    int
	timeout time.Duration
	logger  *zap.Logger
	sf      singleflight.Group
}

func NewPool(gen Generator, cache SetCache, size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{gen: gen, cache: cache, size: size, timeout: 2 * time.Minute, logger: logger}
}

// Generate pops a cached set or generates one on a miss.
func (p *Pool) Generate(ctx context.Context, mode domain.GameMode) ([]domain.Question, error) {
	set, ok, err := p.cache.Pop(ctx, mode)
	if err != nil {
		p.logger.Warn("pop pooled question set", zap.String("mode", string(mode)), zap.Error(err))
	}
	go p.refill(mode)
	if ok {
		return set, nil
	}
	return p.gen.Generate(ctx, mode)
}

// Warm fills the pool for every mode and blocks until done.
func (p *Pool) Warm(ctx context.Context) {
	for _, mode := range domain.Modes {
		if _, err, _ := p.sf.Do(string(mode), func() (interface{}, error) {
			return nil, p.fill(ctx, mode)
		}); err != nil {
			p.logger.Warn("warm question pool", zap.String("mode", string(mode)), zap.Error(err))
		}
	}
}

func (p *Pool) refill(mode domain.GameMode) {
	_, err, _ := p.sf.Do(string(mode), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		return nil, p.fill(ctx, mode)
	})
	if err != nil {
		p.logger.Warn("refill question pool", zap.String("mode", string(mode)), zap.Error(err))
	}
}

func (p *Pool) fill(ctx context.Context, mode domain.GameMode) error {
	for {
		n, err := p.cache.Len(ctx, mode)
		if err != nil {
			return err
		}
		if n >= p.size {
			return nil
		}
		raw, err := p.gen.Generate(ctx, mode)
		if err != nil {
			return err
		}
		set, _ := domain.NormalizeSet(raw)
		if len(set) == 0 {
			return domain.ErrEmptyQuestionSet
		}
		if err := p.cache.Push(ctx, mode, set); err != nil {
			return err
		}
	}
}
