package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mehdibadjian/fitness-planner/internal/models"
	"github.com/mehdibadjian/fitness-planner/internal/repository"
	"github.com/mehdibadjian/fitness-planner/internal/service"
)

type mockRepo struct {
	LoadSnapshotFunc func(ctx context.Context, ownerID string) (*models.Snapshot, error)
	SaveSnapshotFunc func(ctx context.Context, snap models.Snapshot) error
	ListWorkoutsFunc func(ctx context.Context, ownerID string) ([]models.WorkoutEntry, error)
	ListSmokingFunc  func(ctx context.Context, ownerID string) ([]models.SmokingEntry, error)
}

func (m *mockRepo) LoadSnapshot(ctx context.Context, ownerID string) (*models.Snapshot, error) {
	return m.LoadSnapshotFunc(ctx, ownerID)
}
func (m *mockRepo) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	return m.SaveSnapshotFunc(ctx, snap)
}
func (m *mockRepo) ListWorkouts(ctx context.Context, ownerID string) ([]models.WorkoutEntry, error) {
	return m.ListWorkoutsFunc(ctx, ownerID)
}
func (m *mockRepo) ListSmoking(ctx context.Context, ownerID string) ([]models.SmokingEntry, error) {
	return m.ListSmokingFunc(ctx, ownerID)
}

func TestLoad_NotFoundIsEmpty(t *testing.T) {
	repo := &mockRepo{
		LoadSnapshotFunc: func(context.Context, string) (*models.Snapshot, error) {
			return nil, repository.ErrSnapshotNotFound
		},
	}
	snap, err := service.NewSnapshotService(repo).Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap != nil {
		t.Errorf("snapshot = %+v; want nil", snap)
	}
}

func TestLoad_Error(t *testing.T) {
	wantErr := errors.New("db down")
	repo := &mockRepo{
		LoadSnapshotFunc: func(context.Context, string) (*models.Snapshot, error) {
			return nil, wantErr
		},
	}
	_, err := service.NewSnapshotService(repo).Load(context.Background(), "u1")
	if err != wantErr {
		t.Fatalf("Load error = %v; want %v", err, wantErr)
	}
}

func TestSave_ForcesOwnerAndStampsSync(t *testing.T) {
	var saved models.Snapshot
	repo := &mockRepo{
		SaveSnapshotFunc: func(_ context.Context, snap models.Snapshot) error {
			saved = snap
			return nil
		},
	}
	input := models.Snapshot{
		Workouts: []models.WorkoutEntry{{Date: "2024-03-01", WeekNumber: 9}},
		UserID:   "someone-else",
	}
	if err := service.NewSnapshotService(repo).Save(context.Background(), "u1", input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.UserID != "u1" {
		t.Errorf("UserID = %q; want u1", saved.UserID)
	}
	if saved.LastSync.IsZero() {
		t.Error("expected lastSync to be set")
	}
	if !reflect.DeepEqual(saved.Workouts, input.Workouts) {
		t.Errorf("workouts = %+v; want %+v", saved.Workouts, input.Workouts)
	}
}

func TestSave_ValidationError(t *testing.T) {
	called := false
	repo := &mockRepo{
		SaveSnapshotFunc: func(context.Context, models.Snapshot) error {
			called = true
			return nil
		},
	}
	input := models.Snapshot{Smoking: []models.SmokingEntry{{Date: "2024-03-01", CigarettesSmoked: -2, WeekNumber: 9}}}
	err := service.NewSnapshotService(repo).Save(context.Background(), "u1", input)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Save error = %v; want validation error", err)
	}
	if called {
		t.Error("repository must not be called for invalid snapshots")
	}
}

func TestDashboard(t *testing.T) {
	repo := &mockRepo{
		ListWorkoutsFunc: func(context.Context, string) ([]models.WorkoutEntry, error) {
			return []models.WorkoutEntry{
				{Date: "2024-03-01", WorkoutDone: true, Duration: models.IntPtr(30)},
				{Date: "2024-03-02"},
			}, nil
		},
		ListSmokingFunc: func(context.Context, string) ([]models.SmokingEntry, error) {
			return []models.SmokingEntry{{Date: "2024-03-01", CigarettesSmoked: 4, Target: 6, WeekNumber: 9}}, nil
		},
	}
	d, err := service.NewSnapshotService(repo).Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Workouts.TotalWorkouts != 2 || d.Workouts.CompletedWorkouts != 1 {
		t.Errorf("workout stats = %+v", d.Workouts)
	}
	if d.Smoking.TotalSmoked != 4 || d.Smoking.DaysOnTarget != 1 {
		t.Errorf("smoking stats = %+v", d.Smoking)
	}
}

func TestDashboard_Error(t *testing.T) {
	wantErr := errors.New("list failed")
	repo := &mockRepo{
		ListWorkoutsFunc: func(context.Context, string) ([]models.WorkoutEntry, error) {
			return nil, wantErr
		},
	}
	_, err := service.NewSnapshotService(repo).Dashboard(context.Background(), "u1")
	if err != wantErr {
		t.Fatalf("Dashboard error = %v; want %v", err, wantErr)
	}
}
