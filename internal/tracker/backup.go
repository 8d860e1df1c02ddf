package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mehdibadjian/fitness-planner/internal/models"
)

// ErrMalformedImport is returned when an import payload cannot be used.
var ErrMalformedImport = errors.New("malformed import")

// Export serializes both collections as an indented backup document.
func (s *Session) Export(ctx context.Context) ([]byte, error) {
	workouts, err := s.store.Workouts(ctx)
	if err != nil {
		return nil, err
	}
	smoking, err := s.store.Smoking(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(models.Export{
		Workouts:   workouts,
		Smoking:    smoking,
		ExportDate: s.now().UTC(),
		UserID:     s.ownerID,
	}, "", "  ")
}

func isArray(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
}

// Import overwrites both collections with the ones in data. Both
// "workouts" and "smoking" must be present and be arrays; otherwise
// nothing is written and ErrMalformedImport is returned. A sync is
// scheduled after a successful import.
func (s *Session) Import(ctx context.Context, data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	rawWorkouts, ok := doc["workouts"]
	if !ok || !isArray(rawWorkouts) {
		return fmt.Errorf("%w: workouts must be an array", ErrMalformedImport)
	}
	rawSmoking, ok := doc["smoking"]
	if !ok || !isArray(rawSmoking) {
		return fmt.Errorf("%w: smoking must be an array", ErrMalformedImport)
	}

	var workouts []models.WorkoutEntry
	if err := json.Unmarshal(rawWorkouts, &workouts); err != nil {
		return fmt.Errorf("%w: workouts: %w", ErrMalformedImport, err)
	}
	var smoking []models.SmokingEntry
	if err := json.Unmarshal(rawSmoking, &smoking); err != nil {
		return fmt.Errorf("%w: smoking: %w", ErrMalformedImport, err)
	}

	if err := s.store.Replace(ctx, workouts, smoking); err != nil {
		return err
	}
	s.log.Info("backup imported", zap.Int("workouts", len(workouts)), zap.Int("smoking", len(smoking)))
	s.ScheduleSync()
	return nil
}
