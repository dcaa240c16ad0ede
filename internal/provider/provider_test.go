package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-quiz-service/internal/domain"
)

func TestQuestionsFallsBackOnError(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, domain.GameMode) ([]domain.Question, error) {
		return nil, errors.New("network down")
	})
	p := New(gen, nil)

	got := p.Questions(context.Background(), domain.ModeGuessSurah)
	require.Equal(t, Fallback(), got)
	require.Len(t, got, 1)
	assert.Equal(t, "err-fallback", got[0].ID)
	assert.Equal(t, "Al-Kautsar", got[0].Answer())
	assert.Equal(t, 10, got[0].Points)
}

func TestQuestionsFallsBackWhenNothingValid(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, domain.GameMode) ([]domain.Question, error) {
		bad := domain.NewChoice("q1", "text", 10, "", []string{"a", "b", "c", "d"}, "z")
		return []domain.Question{bad}, nil
	})
	sink := &recordingSink{}
	p := New(gen, nil, WithSink(sink))

	got := p.Questions(context.Background(), domain.ModeWordMeaning)
	require.Equal(t, Fallback(), got)
	assert.Zero(t, sink.calls, "fallback sets are not archived")
}

func TestQuestionsFallsBackWithoutGenerator(t *testing.T) {
	p := New(nil, nil)
	require.Equal(t, Fallback(), p.Questions(context.Background(), domain.ModeTajwidKnowledge))
}

func TestQuestionsNormalizesAndArchives(t *testing.T) {
	raw := makeSet(12)
	raw[3] = domain.NewChoice("broken", "text", 10, "", []string{"a", "b"}, "a")
	gen := GeneratorFunc(func(context.Context, domain.GameMode) ([]domain.Question, error) {
		return raw, nil
	})
	sink := &recordingSink{}
	p := New(gen, nil, WithSink(sink))

	got := p.Questions(context.Background(), domain.ModeCompleteVerse)
	require.Len(t, got, domain.SetSize)
	for _, q := range got {
		assert.NotEqual(t, "broken", q.ID)
		assert.NoError(t, q.Validate())
	}
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, domain.ModeCompleteVerse, sink.mode)
	assert.Equal(t, got, sink.set)
}

func TestQuestionsIgnoresSinkFailure(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, domain.GameMode) ([]domain.Question, error) {
		return makeSet(3), nil
	})
	p := New(gen, nil, WithSink(&recordingSink{err: errors.New("db down")}))

	got := p.Questions(context.Background(), domain.ModeGuessSurah)
	assert.Len(t, got, 3)
}

func TestPoolServesWarmedSets(t *testing.T) {
	gen := &countingGenerator{}
	cache := newListCache()
	pool := NewPool(gen, cache, 2, nil)

	pool.Warm(context.Background())
	for _, mode := range domain.Modes {
		n, err := cache.Len(context.Background(), mode)
		require.NoError(t, err)
		assert.Equal(t, 2, n, "mode %s", mode)
	}
	warmCalls := gen.count()
	assert.Equal(t, 2*len(domain.Modes), warmCalls)

	set, err := pool.Generate(context.Background(), domain.ModeGuessSurah)
	require.NoError(t, err)
	assert.Len(t, set, domain.SetSize)
}

func TestPoolGeneratesOnMiss(t *testing.T) {
	gen := &countingGenerator{}
	pool := NewPool(gen, newListCache(), 1, nil)

	set, err := pool.Generate(context.Background(), domain.ModeWordMeaning)
	require.NoError(t, err)
	assert.Len(t, set, domain.SetSize)
	assert.GreaterOrEqual(t, gen.count(), 1)
}

func TestPoolWarmStopsOnGeneratorError(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, domain.GameMode) ([]domain.Question, error) {
		return nil, errors.New("quota exceeded")
	})
	cache := newListCache()
	NewPool(gen, cache, 3, nil).Warm(context.Background())

	n, err := cache.Len(context.Background(), domain.ModeGuessSurah)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type recordingSink struct {
	calls int
	mode  domain.GameMode
	set   []domain.Question
	err   error
}

func (s *recordingSink) SaveSet(_ context.Context, mode domain.GameMode, qs []domain.Question) error {
	s.calls++
	s.mode = mode
	s.set = qs
	return s.err
}

type countingGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGenerator) Generate(context.Context, domain.GameMode) ([]domain.Question, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return makeSet(domain.SetSize), nil
}

func (g *countingGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type listCache struct {
	mu   sync.Mutex
	sets map[domain.GameMode][][]domain.Question
}

func newListCache() *listCache {
	return &listCache{sets: make(map[domain.GameMode][][]domain.Question)}
}

func (c *listCache) Push(_ context.Context, mode domain.GameMode, qs []domain.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[mode] = append(c.sets[mode], qs)
	return nil
}

func (c *listCache) Pop(_ context.Context, mode domain.GameMode) ([]domain.Question, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.sets[mode]
	if len(list) == 0 {
		return nil, false, nil
	}
	c.sets[mode] = list[1:]
	return list[0], true, nil
}

func (c *listCache) Len(_ context.Context, mode domain.GameMode) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets[mode]), nil
}

func makeSet(n int) []domain.Question {
	qs := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, domain.NewChoice(
			fmt.Sprintf("q%d", i+1),
			"Surat apa?",
			10,
			"",
			[]string{"A", "B", "C", "D"},
			"B",
		))
	}
	return qs
}
