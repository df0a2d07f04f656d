package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys for the mirror and the backup rings. The names are stable;
// renaming them is how projects got "lost" in an earlier life of this tool.
const (
	keyMirror      = "quotecenter:state"
	keyBackup      = "quotecenter:state:backup"
	keyBackupTS    = "quotecenter:state:backup:ts"
	keySnapshots   = "quotecenter:snapshots"
	keyAutoBackups = "quotecenter:autobackups"
)

// ErrNoSnapshot means neither the mirror nor any backup holds data.
var ErrNoSnapshot = errors.New("project: no snapshot available")

// Snapshot is one timestamped copy of the project list.
type Snapshot struct {
	TS       int64     `json:"ts"`
	Projects []Project `json:"projects"`
}

// SnapshotStore mirrors the authoritative state into Redis and keeps bounded
// rings of manual snapshots and automatic backups.
type SnapshotStore struct {
	rdb           *redis.Client
	snapshotLimit int64
	autoBackupMax int64
}

// NewSnapshotStore builds a store with the given ring sizes (10 and 30 when
// zero).
func NewSnapshotStore(rdb *redis.Client, snapshotLimit, autoBackupLimit int) *SnapshotStore {
	if snapshotLimit <= 0 {
		snapshotLimit = 10
	}
	if autoBackupLimit <= 0 {
		autoBackupLimit = 30
	}
	return &SnapshotStore{
		rdb:           rdb,
		snapshotLimit: int64(snapshotLimit),
		autoBackupMax: int64(autoBackupLimit),
	}
}

// WriteMirror stores the current project list. An empty list never
// overwrites a non-empty mirror unless allowShrink is set; before the mirror
// shrinks (fewer projects than stored) the old value is pushed to the backup
// key so nothing is lost to an accidental write.
func (s *SnapshotStore) WriteMirror(ctx context.Context, projects []Project, allowShrink bool) error {
	prev, err := s.readList(ctx, keyMirror)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("project: read mirror: %w", err)
	}

	if len(projects) == 0 && len(prev) > 0 && !allowShrink {
		return nil
	}
	if len(projects) < len(prev) {
		if err := s.writeBackup(ctx, prev); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("project: marshal mirror: %w", err)
	}
	if err := s.rdb.Set(ctx, keyMirror, raw, 0).Err(); err != nil {
		return fmt.Errorf("project: write mirror: %w", err)
	}
	return nil
}

// writeBackup stores a copy under the backup key. A non-empty backup is
// never replaced by an empty list.
func (s *SnapshotStore) writeBackup(ctx context.Context, projects []Project) error {
	if len(projects) == 0 {
		cur, err := s.readList(ctx, keyBackup)
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("project: read backup: %w", err)
		}
		if len(cur) > 0 {
			return nil
		}
	}
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("project: marshal backup: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyBackup, raw, 0)
	pipe.Set(ctx, keyBackupTS, strconv.FormatInt(Now().UnixMilli(), 10), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("project: write backup: %w", err)
	}
	return nil
}

// PushSnapshot prepends a manual snapshot to the bounded ring.
func (s *SnapshotStore) PushSnapshot(ctx context.Context, projects []Project) error {
	return s.pushRing(ctx, keySnapshots, s.snapshotLimit, projects)
}

// PushAutoBackup prepends an automatic backup to its ring.
func (s *SnapshotStore) PushAutoBackup(ctx context.Context, projects []Project) error {
	return s.pushRing(ctx, keyAutoBackups, s.autoBackupMax, projects)
}

func (s *SnapshotStore) pushRing(ctx context.Context, key string, limit int64, projects []Project) error {
	raw, err := json.Marshal(Snapshot{TS: Now().UnixMilli(), Projects: projects})
	if err != nil {
		return fmt.Errorf("project: marshal snapshot: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, limit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("project: push %s: %w", key, err)
	}
	return nil
}

// Snapshots lists the manual snapshot ring, newest first.
func (s *SnapshotStore) Snapshots(ctx context.Context) ([]Snapshot, error) {
	return s.readRing(ctx, keySnapshots)
}

// AutoBackups lists the automatic backup ring, newest first.
func (s *SnapshotStore) AutoBackups(ctx context.Context) ([]Snapshot, error) {
	return s.readRing(ctx, keyAutoBackups)
}

func (s *SnapshotStore) readRing(ctx context.Context, key string) ([]Snapshot, error) {
	vals, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", key, err)
	}
	out := make([]Snapshot, 0, len(vals))
	for _, v := range vals {
		var snap Snapshot
		if json.Unmarshal([]byte(v), &snap) != nil {
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

// Recover returns the best project list Redis has: the mirror when it holds
// projects, else the backup, else the newest non-empty auto backup.
func (s *SnapshotStore) Recover(ctx context.Context) ([]Project, error) {
	for _, key := range []string{keyMirror, keyBackup} {
		list, err := s.readList(ctx, key)
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("project: recover %s: %w", key, err)
		}
		if len(list) > 0 {
			return list, nil
		}
	}
	backups, err := s.AutoBackups(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range backups {
		if len(b.Projects) > 0 {
			return b.Projects, nil
		}
	}
	return nil, ErrNoSnapshot
}

func (s *SnapshotStore) readList(ctx context.Context, key string) ([]Project, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var list []Project
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("project: decode %s: %w", key, err)
	}
	return list, nil
}

// BackupAge reports how old the backup key is.
func (s *SnapshotStore) BackupAge(ctx context.Context) (time.Duration, error) {
	raw, err := s.rdb.Get(ctx, keyBackupTS).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNoSnapshot
		}
		return 0, fmt.Errorf("project: read backup ts: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("project: parse backup ts: %w", err)
	}
	return Now().Sub(time.UnixMilli(ms)), nil
}
