package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quran-quiz-service/internal/domain"
)

// SetCache keeps pre-generated question sets per mode in process memory.
// Entries expire after a TTL so stale sets are regenerated.
type SetCache struct {
	ttl   time.Duration
	clock func() time.Time
	rnd   *rand.Rand

	mu   sync.Mutex
	sets map[domain.GameMode][]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewSetCache(ttl time.Duration) *SetCache {
	return &SetCache{
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sets:  make(map[domain.GameMode][]cachedSet),
	}
}

func (c *SetCache) Push(_ context.Context, mode domain.GameMode, questions []domain.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cachedSet{questions: questions}
	if ttl := c.ttlWithJitter(); ttl > 0 {
		entry.expiresAt = c.clock().Add(ttl)
	}
	c.sets[mode] = append(c.sets[mode], entry)
	return nil
}

// Pop removes and returns the oldest unexpired set for mode.
func (c *SetCache) Pop(_ context.Context, mode domain.GameMode) ([]domain.Question, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := c.evictLocked(mode)
	if len(live) == 0 {
		return nil, false, nil
	}
	c.sets[mode] = live[1:]
	return live[0].questions, true, nil
}

func (c *SetCache) Len(_ context.Context, mode domain.GameMode) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.evictLocked(mode)), nil
}

func (c *SetCache) evictLocked(mode domain.GameMode) []cachedSet {
	now := c.clock()
	list := c.sets[mode]
	live := list[:0]
	for _, e := range list {
		if e.expiresAt.IsZero() || e.expiresAt.After(now) {
			live = append(live, e)
		}
	}
	c.sets[mode] = live
	return live
}

func (c *SetCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
