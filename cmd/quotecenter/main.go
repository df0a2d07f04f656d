package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scontainr/quotecenter/internal/app"
	"github.com/scontainr/quotecenter/internal/assist"
	assisthttp "github.com/scontainr/quotecenter/internal/assist/http"
	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/observability"
	"github.com/scontainr/quotecenter/internal/platform/cache"
	"github.com/scontainr/quotecenter/internal/platform/db"
	"github.com/scontainr/quotecenter/internal/project"
	projecthttp "github.com/scontainr/quotecenter/internal/project/http"
	quotehttp "github.com/scontainr/quotecenter/internal/quote/http"
	"github.com/scontainr/quotecenter/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var snaps *project.SnapshotStore
	var jobsClient *jobs.Client
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, snapshots disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		snaps = project.NewSnapshotStore(redisClient, cfg.SnapshotLimit, cfg.AutoBackupLimit)
		jobsClient, err = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("jobs client unavailable", slog.Any("error", err))
		} else {
			defer func() {
				if err := jobsClient.Close(); err != nil {
					logger.Warn("jobs client close", slog.Any("error", err))
				}
			}()
		}
	}

	repo := project.NewRepository(pool)
	svc := project.NewService(logger, repo, snaps, cfg.PersistDebounce)
	if err := svc.Bootstrap(ctx); err != nil {
		logger.Error("bootstrap state", slog.Any("error", err))
		os.Exit(1)
	}

	cat := catalog.Default()

	var assistHandler *assisthttp.Handler
	if cfg.OpenAIAPIKey != "" {
		assistSvc := assist.NewService(assist.NewClient(cfg.OpenAIAPIKey, cfg.AssistModel))
		assistHandler = assisthttp.NewHandler(logger, assistSvc, svc, cat)
	} else {
		logger.Warn("OPENAI_API_KEY not set, assist endpoint disabled")
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ProjectHandler: projecthttp.NewHandler(logger, svc, snaps, cat, jobsClient),
		QuoteHandler:   quotehttp.NewHandler(logger, svc, cat),
		AssistHandler:  assistHandler,
		Metrics:        observability.NewMetrics(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	svc.Flush()
}
