package cli

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quran-quiz-service/internal/config"
	"quran-quiz-service/internal/game"
	"quran-quiz-service/internal/infra/memory"
	pgarchive "quran-quiz-service/internal/infra/postgres"
	redisinfra "quran-quiz-service/internal/infra/redis"
	"quran-quiz-service/internal/provider"
	"quran-quiz-service/internal/provider/gemini"
)

func gameTiming(cfg config.Config) game.Timing {
	return game.Timing{
		CountdownFrom:   cfg.Game.CountdownFrom,
		QuestionSeconds: cfg.Game.QuestionSeconds,
		Tick:            config.TTLDuration(cfg.Game.Tick, 0),
		GoDelay:         config.TTLDuration(cfg.Game.GoDelay, 0),
		SubmitReveal:    config.TTLDuration(cfg.Game.SubmitReveal, 0),
		TimeoutReveal:   config.TTLDuration(cfg.Game.TimeoutReveal, 0),
		WinDelay:        config.TTLDuration(cfg.Game.WinDelay, 0),
	}.WithDefaults()
}

// buildQuestions wires the Gemini generator behind the optional pre-generation
// pool and the never-failing provider. redisClient and archive may be nil.
func buildQuestions(ctx context.Context, cfg config.Config, logger *zap.Logger, redisClient *redis.Client, archive *pgarchive.Archive) *provider.Provider {
	client := gemini.New(gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		BaseURL:     cfg.Gemini.BaseURL,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
	})
	if !client.IsAvailable() {
		logger.Warn("GEMINI_API_KEY not set, every session will use the offline question")
	}

	var gen provider.Generator = client
	if cfg.Pool.Size > 0 && client.IsAvailable() {
		ttl := config.TTLDuration(cfg.Pool.TTL, time.Hour)
		var cache provider.SetCache
		if redisClient != nil {
			cache = redisinfra.NewSetCache(redisClient, ttl)
		} else {
			cache = memory.NewSetCache(ttl)
		}
		pool := provider.NewPool(client, cache, cfg.Pool.Size, logger)
		go pool.Warm(ctx)
		gen = pool
	}

	var opts []provider.Option
	if archive != nil {
		opts = append(opts, provider.WithSink(archive))
	}
	return provider.New(gen, logger, opts...)
}
