package project

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshotStore(t *testing.T, snapshotLimit, autoBackupLimit int) *SnapshotStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSnapshotStore(rdb, snapshotLimit, autoBackupLimit)
}

func projectList(ids ...string) []Project {
	out := make([]Project, len(ids))
	for i, id := range ids {
		out[i] = Project{ID: id, Meta: Meta{Name: id}}
	}
	return out
}

func TestWriteMirrorAndRecover(t *testing.T) {
	ctx := context.Background()
	s := newTestSnapshotStore(t, 0, 0)

	require.NoError(t, s.WriteMirror(ctx, projectList("a", "b"), false))
	got, err := s.Recover(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
}

func TestWriteMirrorEmptyNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestSnapshotStore(t, 0, 0)

	require.NoError(t, s.WriteMirror(ctx, projectList("a"), false))
	require.NoError(t, s.WriteMirror(ctx, nil, false))

	got, err := s.Recover(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "an empty list without allowShrink is dropped")
}

func TestWriteMirrorShrinkBacksUp(t *testing.T) {
	ctx := context.Background()
	s := newTestSnapshotStore(t, 0, 0)

	require.NoError(t, s.WriteMirror(ctx, projectList("a", "b", "c"), false))
	require.NoError(t, s.WriteMirror(ctx, projectList("a"), true))

	// The mirror holds the shrunken list, the backup the previous one.
	got, err := s.readList(ctx, keyMirror)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	backup, err := s.readList(ctx, keyBackup)
	require.NoError(t, err)
	assert.Len(t, backup, 3)

	age, err := s.BackupAge(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, age.Milliseconds(), int64(0))
}

func TestWriteMirrorEmptyWithAllowShrink(t *testing.T) {
	ctx := context.Background()
	s := newTestSnapshotStore(t, 0, 0)

	require.NoError(t, s.WriteMirror(ctx, projectList("a"), false))
	require.NoError(t, s.WriteMirror(ctx, nil, true))

	// The wiped mirror loses to the backup in the recovery chain.
	got, err := s.Recover(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestSnapshotRingIsBounded(t *testing.T) {
	ctx := context.Background()
	s := newTestSnapshotStore(t, 2, 2)

	require.NoError(t, s.PushSnapshot(ctx, projectList("uno")))
	require.NoError(t, s.PushSnapshot(ctx, projectList("dos")))
	require.NoError(t, s.PushSnapshot(ctx, projectList("tres")))

	snaps, err := s.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2, "the ring is trimmed to its limit")
	assert.Equal(t, "tres", snaps[0].Projects[0].ID, "newest first")
	assert.Equal(t, "dos", snaps[1].Projects[0].ID)
}

func TestRecoverFallsBackToAutoBackup(t *testing.T) {
	ctx := context.Background()
	s := newTestSnapshotStore(t, 0, 0)

	_, err := s.Recover(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, s.PushAutoBackup(ctx, projectList("auto")))
	got, err := s.Recover(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "auto", got[0].ID)
}

func TestBackupAgeWithoutBackup(t *testing.T) {
	s := newTestSnapshotStore(t, 0, 0)
	_, err := s.BackupAge(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
