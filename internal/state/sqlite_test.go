package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapprep/internal/pipeline"
	"github.com/leapstack-labs/leapprep/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".leapprep", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate(ctx))
	run, err := store.CreateRun(ctx, "select 1")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// reopening keeps the data and re-running migrations is a no-op
	store = NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(ctx))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "select 1", got.Source)

	version, err := store.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(nil)

	tests := []struct {
		name string
		op   func() error
	}{
		{"migrate", func() error { return store.Migrate(ctx) }},
		{"create run", func() error { _, err := store.CreateRun(ctx, "x"); return err }},
		{"get run", func() error { _, err := store.GetRun(ctx, "x"); return err }},
		{"complete run", func() error { return store.CompleteRun(ctx, "x", RunStatusCompleted, "") }},
		{"list runs", func() error { _, err := store.ListRuns(ctx, 1); return err }},
		{"record step", func() error { return store.RecordStep(ctx, "x", pipeline.StepStat{}) }},
		{"list steps", func() error { _, err := store.ListSteps(ctx, "x"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "database not opened")
		})
	}
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		status     RunStatus
		errMsg     string
		wantStatus RunStatus
	}{
		{"completed", RunStatusCompleted, "", RunStatusCompleted},
		{"failed with message", RunStatusFailed, "split step failed", RunStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := setupTestStore(t)

			run, err := store.CreateRun(ctx, "zillow.csv")
			require.NoError(t, err)
			assert.Equal(t, RunStatusRunning, run.Status)
			assert.Len(t, run.ID, 36)
			assert.Zero(t, run.Duration())

			require.NoError(t, store.CompleteRun(ctx, run.ID, tt.status, tt.errMsg))

			got, err := store.GetRun(ctx, run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.errMsg, got.Error)
			assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Microsecond)
			require.NotNil(t, got.CompletedAt)
			assert.GreaterOrEqual(t, got.Duration(), time.Duration(0))
		})
	}
}

func TestSQLiteStore_UnknownRun(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.GetRun(ctx, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")

	err = store.CompleteRun(ctx, "nope", RunStatusCompleted, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")

	// foreign keys are enforced
	assert.Error(t, store.RecordStep(ctx, "nope", pipeline.StepStat{Step: pipeline.StepMissing}))
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, src := range []string{"a", "b", "c"} {
		_, err := store.CreateRun(ctx, src)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"c", "b", "a"}},
		{"limited", 2, []string{"c", "b"}},
		{"limit above count", 10, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.ListRuns(ctx, tt.limit)
			require.NoError(t, err)
			var got []string
			for _, r := range runs {
				got = append(got, r.Source)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteStore_Steps(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	run, err := store.CreateRun(ctx, "q")
	require.NoError(t, err)

	steps := []pipeline.StepStat{
		{Step: pipeline.StepMissing, RowsIn: 12, RowsOut: 11, ColsIn: 4, ColsOut: 3, Duration: 3 * time.Millisecond, Detail: "min_column_fraction=0.75 min_row_fraction=0.75"},
		{Step: pipeline.StepOutliers, RowsIn: 11, RowsOut: 9, ColsIn: 3, ColsOut: 3, Duration: time.Millisecond},
		{Step: pipeline.StepSplit, RowsIn: 9, RowsOut: 6, ColsIn: 3, ColsOut: 3, Detail: "train=6 test=1 validate=2"},
	}
	for _, s := range steps {
		require.NoError(t, store.RecordStep(ctx, run.ID, s))
	}

	got, err := store.ListSteps(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, steps, got)

	other, err := store.ListSteps(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteStore_Recorder(t *testing.T) {
	store := setupTestStore(t)

	eng, err := pipeline.New(pipeline.Config{
		Options:  pipeline.DefaultOptions(),
		Source:   "listings",
		Recorder: store,
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	res, err := eng.Run(context.Background(), testutil.Listings(t))
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	ctx := context.Background()
	run, err := store.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, "listings", run.Source)

	steps, err := store.ListSteps(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Steps, steps)
}

func TestSQLiteStore_FinishRunAfterCancel(t *testing.T) {
	store := setupTestStore(t)
	id, err := store.StartRun(context.Background(), "q")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, store.FinishRun(ctx, id, errors.New("interrupted")))

	run, err := store.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "interrupted", run.Error)
}
