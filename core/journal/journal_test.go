package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"record-sync/core/database"
	"record-sync/core/synchronizer"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	j := New(db)
	require.NoError(t, j.Migrate(context.Background()))

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return j
}

func TestJournal_StartAndFinish(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	run, err := j.Start(ctx, "weapons", false)
	require.NoError(t, err)
	_, err = uuid.Parse(run.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)

	summary := synchronizer.Summary{Added: 1, Changed: 2, Unchanged: 3}
	decisions := []Decision{
		{Record: "IronSword", Path: `IronSword\Name`, Action: "changed", Before: "Rusty Sword", After: "Iron Sword"},
		{Record: "IronSword", Path: `IronSword\Count`, Action: "rejected", Reason: "read-only"},
	}
	require.NoError(t, j.Finish(ctx, run, 1, summary, decisions, nil))

	stored, err := j.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, stored.Status)
	assert.Equal(t, 1, stored.Records)
	assert.Equal(t, 2, stored.Changed)
	assert.Equal(t, 3, stored.Unchanged)
	require.NotNil(t, stored.FinishedAt)
	assert.True(t, stored.FinishedAt.After(stored.StartedAt))

	got, err := j.Decisions(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, `IronSword\Name`, got[0].Path)
	assert.Equal(t, run.ID, got[1].RunID)
	assert.Equal(t, "read-only", got[1].Reason)
}

func TestJournal_FailedRun(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	run, err := j.Start(ctx, "armor", true)
	require.NoError(t, err)
	require.NoError(t, j.Finish(ctx, run, 0, synchronizer.Summary{}, nil, errors.New("host fault")))

	stored, err := j.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, "host fault", stored.Error)
	assert.True(t, stored.DryRun)
}

func TestJournal_Runs(t *testing.T) {
	ctx := context.Background()
	j := newTestJournal(t)

	var ids []string
	for range 3 {
		run, err := j.Start(ctx, "weapons", false)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	_, err := j.Start(ctx, "armor", false)
	require.NoError(t, err)

	runs, err := j.Runs(ctx, "weapons", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	runs, err = j.Runs(ctx, "weapons", 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = j.Runs(ctx, "unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestJournal_RunNotFound(t *testing.T) {
	j := newTestJournal(t)

	_, err := j.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestJournal_StartError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_runs`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = New(db).Start(context.Background(), "weapons", false)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
