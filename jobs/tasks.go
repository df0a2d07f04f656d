package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scontainr/quotecenter/internal/project"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStateBackup pushes the persisted project list onto the Redis
	// auto-backup ring.
	TaskStateBackup = "state:backup"
)

// StateBackupPayload records why the backup was taken.
type StateBackupPayload struct {
	Reason string `json:"reason"`
}

// NewStateBackupTask constructs an Asynq task.
func NewStateBackupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(StateBackupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStateBackup, data), nil
}

// StateBackupJob reads the authoritative Postgres row and pushes a copy onto
// the auto-backup ring. It runs nightly and on demand.
type StateBackupJob struct {
	repo   project.Repository
	snaps  *project.SnapshotStore
	logger *slog.Logger
}

// NewStateBackupJob constructs the job.
func NewStateBackupJob(repo project.Repository, snaps *project.SnapshotStore, logger *slog.Logger) *StateBackupJob {
	return &StateBackupJob{repo: repo, snaps: snaps, logger: logger}
}

// Handle processes TaskStateBackup tasks.
func (j *StateBackupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload StateBackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	store, err := j.repo.Load(ctx)
	if err != nil && !errors.Is(err, project.ErrNotFound) {
		return err
	}
	if store == nil || len(store.Projects) == 0 {
		j.logger.Info("state backup skipped, nothing persisted", slog.String("reason", payload.Reason))
		return nil
	}
	if err := j.snaps.PushAutoBackup(ctx, store.Projects); err != nil {
		return err
	}
	j.logger.Info("state backup pushed",
		slog.String("reason", payload.Reason),
		slog.Int("projects", len(store.Projects)),
		slog.Duration("took", time.Since(start)))
	return nil
}
