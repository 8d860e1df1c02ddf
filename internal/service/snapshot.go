// Package service provides business logic for storing and summarizing
// owner snapshots, delegating persistence to a repository interface.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/mehdibadjian/fitness-planner/internal/models"
	"github.com/mehdibadjian/fitness-planner/internal/repository"
	"github.com/mehdibadjian/fitness-planner/internal/stats"
)

// SnapshotRepository defines the persistence operations needed by the SnapshotService.
type SnapshotRepository interface {
	// LoadSnapshot returns the stored snapshot or repository.ErrSnapshotNotFound.
	LoadSnapshot(ctx context.Context, ownerID string) (*models.Snapshot, error)
	// SaveSnapshot replaces the stored snapshot of snap.UserID.
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	// ListWorkouts returns all workout entries of the owner.
	ListWorkouts(ctx context.Context, ownerID string) ([]models.WorkoutEntry, error)
	// ListSmoking returns all smoking entries of the owner.
	ListSmoking(ctx context.Context, ownerID string) ([]models.SmokingEntry, error)
}

// SnapshotService implements the server side of the remote snapshot endpoint.
type SnapshotService struct {
	repo SnapshotRepository
	now  func() time.Time
}

// NewSnapshotService constructs a SnapshotService with the provided SnapshotRepository.
func NewSnapshotService(repo SnapshotRepository) *SnapshotService {
	return &SnapshotService{repo: repo, now: time.Now}
}

// Load returns the snapshot of ownerID, or nil when the owner has none yet.
func (s *SnapshotService) Load(ctx context.Context, ownerID string) (*models.Snapshot, error) {
	snap, err := s.repo.LoadSnapshot(ctx, ownerID)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		return nil, nil
	}
	return snap, err
}

// Save validates snap and stores it as the snapshot of ownerID. The owner in
// the payload is ignored; a missing lastSync is set to the current time.
// Validation failures match models.ErrValidation.
func (s *SnapshotService) Save(ctx context.Context, ownerID string, snap models.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.UserID = ownerID
	if snap.LastSync.IsZero() {
		snap.LastSync = s.now().UTC()
	}
	return s.repo.SaveSnapshot(ctx, snap)
}

// Dashboard computes the statistics of everything stored for ownerID.
func (s *SnapshotService) Dashboard(ctx context.Context, ownerID string) (stats.Dashboard, error) {
	workouts, err := s.repo.ListWorkouts(ctx, ownerID)
	if err != nil {
		return stats.Dashboard{}, err
	}
	smoking, err := s.repo.ListSmoking(ctx, ownerID)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Summarize(workouts, smoking), nil
}
