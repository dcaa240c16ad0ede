package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quran-quiz-service/internal/app"
	"quran-quiz-service/internal/config"
	"quran-quiz-service/internal/game"
	"quran-quiz-service/internal/infra/memory"
	pgarchive "quran-quiz-service/internal/infra/postgres"
	"quran-quiz-service/internal/infra/rabbit"
	redisinfra "quran-quiz-service/internal/infra/redis"
	"quran-quiz-service/internal/logging"
	transport "quran-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var (
		archive   *pgarchive.Archive
		recorders []game.Recorder
		results   transport.ResultLister
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		archive = pgarchive.NewArchive(pool)
		results = archive
		recorders = append(recorders, game.RecorderFunc(archive.SaveResult))

		stopPrune, err := schedulePrune(ctx, cfg, archive, logger)
		if err != nil {
			return err
		}
		defer stopPrune()
	}

	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbit.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer publisher.Close()
		recorders = append(recorders, game.RecorderFunc(publisher.Publish))
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	questions := buildQuestions(ctx, cfg, logger, redisClient, archive)
	service := app.NewGameService(store, questions, logger,
		app.WithTiming(gameTiming(cfg)),
		app.WithRecorders(recorders...),
	)
	wsHandler := transport.NewWSHandler(service, logger)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewMux(wsHandler, results, logger),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return server.Shutdown(shutdownCtx)
}

// schedulePrune deletes archived rows past retention on a cron schedule.
func schedulePrune(ctx context.Context, cfg config.Config, archive *pgarchive.Archive, logger *zap.Logger) (func(), error) {
	spec := cfg.Archive.PruneSchedule
	if spec == "" {
		spec = "0 3 * * *"
	}
	retention := config.TTLDuration(cfg.Archive.Retention, 30*24*time.Hour)

	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		removed, err := archive.Prune(ctx, retention)
		if err != nil {
			logger.Error("failed to prune archive", zap.Error(err))
			return
		}
		logger.Info("archive pruned", zap.Int64("rows", removed), zap.Duration("retention", retention))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
