package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdibadjian/fitness-planner/internal/models"
)

func TestUpsertThenGetByDate(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(NewMemoryProvider())

	w := models.WorkoutEntry{ID: "w1", Date: "2024-03-01", WorkoutDone: true, Duration: models.IntPtr(45), WeekNumber: 9}
	require.NoError(t, s.UpsertWorkout(ctx, w))

	got, ok, err := s.WorkoutByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, w, got)

	e := models.SmokingEntry{ID: "s1", Date: "2024-03-01", CigarettesSmoked: 5, Target: 2, WeekNumber: 9}
	require.NoError(t, s.UpsertSmoking(ctx, e))
	gotS, ok, err := s.SmokingByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e, gotS)

	_, ok, err = s.SmokingByDate(ctx, "2024-03-02")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertSameDateReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(NewMemoryProvider())

	require.NoError(t, s.UpsertSmoking(ctx, models.SmokingEntry{ID: "a", Date: "2024-03-01", CigarettesSmoked: 9, WeekNumber: 9}))
	require.NoError(t, s.UpsertSmoking(ctx, models.SmokingEntry{ID: "b", Date: "2024-03-02", CigarettesSmoked: 7, WeekNumber: 9}))
	require.NoError(t, s.UpsertSmoking(ctx, models.SmokingEntry{ID: "c", Date: "2024-03-01", CigarettesSmoked: 3, WeekNumber: 9}))

	all, err := s.Smoking(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, _, err := s.SmokingByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "c", got.ID)
	assert.Equal(t, 3, got.CigarettesSmoked)
}

func TestByWeek(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(NewMemoryProvider())
	for _, w := range []models.WorkoutEntry{
		{Date: "2024-01-02", WeekNumber: 1},
		{Date: "2024-01-05", WeekNumber: 1},
		{Date: "2024-01-10", WeekNumber: 2},
	} {
		require.NoError(t, s.UpsertWorkout(ctx, w))
	}

	week1, err := s.WorkoutsByWeek(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, week1, 2)

	week3, err := s.SmokingByWeek(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, week3)
}

func TestWriteHookRunsAfterUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(NewMemoryProvider())
	calls := 0
	s.OnWrite(func() { calls++ })

	require.NoError(t, s.UpsertWorkout(ctx, models.WorkoutEntry{Date: "2024-03-01", WeekNumber: 9}))
	require.NoError(t, s.UpsertSmoking(ctx, models.SmokingEntry{Date: "2024-03-01", WeekNumber: 9}))
	require.NoError(t, s.Replace(ctx, nil, nil))

	assert.Equal(t, 2, calls)
}

func TestAbsentStorageDegradesToNoop(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(nil)

	assert.False(t, s.Available())
	require.NoError(t, s.UpsertWorkout(ctx, models.WorkoutEntry{Date: "2024-03-01", WeekNumber: 9}))

	all, err := s.Workouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, ok, err := s.WorkoutByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.Replace(ctx, nil, nil), ErrStorageUnavailable)
}

// failingProvider fails every Set of failKey.
type failingProvider struct {
	*MemoryProvider
	failKey string
}

func (f *failingProvider) Set(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.MemoryProvider.Set(ctx, key, value)
}

func TestReplaceRollsBackOnPartialFailure(t *testing.T) {
	ctx := context.Background()
	p := &failingProvider{MemoryProvider: NewMemoryProvider()}
	s := NewLocalStore(p)

	original := models.WorkoutEntry{ID: "keep", Date: "2024-03-01", WeekNumber: 9}
	require.NoError(t, s.UpsertWorkout(ctx, original))

	p.failKey = smokingKey
	err := s.Replace(ctx,
		[]models.WorkoutEntry{{ID: "new", Date: "2024-03-05", WeekNumber: 10}},
		[]models.SmokingEntry{{ID: "x", Date: "2024-03-05", WeekNumber: 10}},
	)
	require.Error(t, err)

	workouts, err := s.Workouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.WorkoutEntry{original}, workouts)
}

func TestCorruptDocumentIsReported(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()
	require.NoError(t, p.Set(ctx, workoutsKey, []byte("{not json")))

	_, err := NewLocalStore(p).Workouts(ctx)
	assert.ErrorContains(t, err, "decode workouts")
}

func TestAdoptReplacesWhenNothingChanged(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(NewMemoryProvider())
	require.NoError(t, s.UpsertSmoking(ctx, models.SmokingEntry{Date: "2024-03-01", CigarettesSmoked: 5, WeekNumber: 9}))

	workouts, smoking, gen, err := s.Snapshot(ctx)
	require.NoError(t, err)

	merged := SyncResult{
		Workouts: []models.WorkoutEntry{{Date: "2024-03-02", WeekNumber: 9}},
		Smoking:  []models.SmokingEntry{{Date: "2024-03-01", CigarettesSmoked: 1, WeekNumber: 9}},
	}
	carried, err := s.Adopt(ctx, gen, SyncResult{Workouts: workouts, Smoking: smoking}, merged)
	require.NoError(t, err)
	assert.False(t, carried)

	gotW, err := s.Workouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, merged.Workouts, gotW)
	gotS, err := s.Smoking(ctx)
	require.NoError(t, err)
	assert.Equal(t, merged.Smoking, gotS)
}

func TestAdoptKeepsWritesAfterSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(NewMemoryProvider())
	require.NoError(t, s.UpsertSmoking(ctx, models.SmokingEntry{Date: "2024-03-01", CigarettesSmoked: 5, WeekNumber: 9}))

	workouts, smoking, gen, err := s.Snapshot(ctx)
	require.NoError(t, err)

	// Written while the sync cycle is away.
	added := models.SmokingEntry{Date: "2024-03-02", CigarettesSmoked: 2, WeekNumber: 9}
	edited := models.SmokingEntry{Date: "2024-03-01", CigarettesSmoked: 7, WeekNumber: 9}
	require.NoError(t, s.UpsertSmoking(ctx, added))
	require.NoError(t, s.UpsertSmoking(ctx, edited))

	merged := SyncResult{
		Workouts: []models.WorkoutEntry{{Date: "2024-02-28", WeekNumber: 9}},
		Smoking:  []models.SmokingEntry{{Date: "2024-03-01", CigarettesSmoked: 5, WeekNumber: 9}, {Date: "2024-02-29", WeekNumber: 9}},
	}
	carried, err := s.Adopt(ctx, gen, SyncResult{Workouts: workouts, Smoking: smoking}, merged)
	require.NoError(t, err)
	assert.True(t, carried)

	gotS, err := s.Smoking(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-02", "2024-03-01", "2024-02-29"}, dates(gotS))
	got, ok, err := s.SmokingByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, got.CigarettesSmoked)

	gotW, err := s.Workouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, merged.Workouts, gotW)
}

func TestAdoptAbsentStorage(t *testing.T) {
	_, err := NewLocalStore(Absent{}).Adopt(context.Background(), 0, SyncResult{}, SyncResult{})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
