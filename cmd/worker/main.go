package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/scontainr/quotecenter/internal/app"
	jobmetrics "github.com/scontainr/quotecenter/internal/jobs"
	"github.com/scontainr/quotecenter/internal/platform/cache"
	"github.com/scontainr/quotecenter/internal/platform/db"
	"github.com/scontainr/quotecenter/internal/project"
	"github.com/scontainr/quotecenter/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	repo := project.NewRepository(pool)
	snaps := project.NewSnapshotStore(redisClient, cfg.SnapshotLimit, cfg.AutoBackupLimit)
	backupJob := jobs.NewStateBackupJob(repo, snaps, logger)
	metrics := jobmetrics.NewMetrics(nil)
	backupHandler := func(ctx context.Context, t *asynq.Task) error {
		return metrics.Track("state_backup").End(backupJob.Handle(ctx, t))
	}

	backupTask, err := jobs.NewStateBackupTask("nightly")
	if err != nil {
		logger.Error("build backup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStateBackup, Handler: backupHandler},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: backupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
