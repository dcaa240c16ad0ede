package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quran-quiz-service/internal/domain"
)

// SetCache keeps pre-generated question sets in Redis so every instance
// draws from the same pool. Each mode is a list of JSON entries:
//
//	RPUSH quiz:pool:{mode} {"expiresAt":...,"questions":[...]}
//
// The list key itself expires after the TTL (plus jitter) of the newest push.
type SetCache struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

type pooledSet struct {
	ExpiresAt time.Time         `json:"expiresAt,omitempty"`
	Questions []domain.Question `json:"questions"`
}

func NewSetCache(client *redis.Client, ttl time.Duration) *SetCache {
	return &SetCache{
		client: client,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *SetCache) Push(ctx context.Context, mode domain.GameMode, questions []domain.Question) error {
	ttl := c.ttlWithJitter()
	entry := pooledSet{Questions: questions}
	if ttl > 0 {
		entry.ExpiresAt = c.clock().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal question set: %w", err)
	}

	key := c.key(mode)
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, key, raw)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push question set: %w", err)
	}
	return nil
}

// Pop removes the oldest set, skipping expired or unreadable entries.
func (c *SetCache) Pop(ctx context.Context, mode domain.GameMode) ([]domain.Question, bool, error) {
	key := c.key(mode)
	for {
		raw, err := c.client.LPop(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("pop question set: %w", err)
		}
		var entry pooledSet
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if !entry.ExpiresAt.IsZero() && !entry.ExpiresAt.After(c.clock()) {
			continue
		}
		return entry.Questions, true, nil
	}
}

// Len counts queued entries, including ones that expired but were not popped yet.
func (c *SetCache) Len(ctx context.Context, mode domain.GameMode) (int, error) {
	n, err := c.client.LLen(ctx, c.key(mode)).Result()
	if err != nil {
		return 0, fmt.Errorf("count question sets: %w", err)
	}
	return int(n), nil
}

func (c *SetCache) key(mode domain.GameMode) string {
	return "quiz:pool:" + string(mode)
}

func (c *SetCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
