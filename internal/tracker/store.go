// Package tracker holds the device side of the tracker: the local store,
// the sync merge engine, backup export/import and the Session tying them together.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/mehdibadjian/fitness-planner/internal/models"
)

const (
	workoutsKey = "workouts"
	smokingKey  = "smoking"
)

// Dated is an entry keyed by calendar date.
type Dated interface {
	EntryDate() string
	Week() int
}

// LocalStore persists the workout and smoking collections through a Provider.
// Every entry is keyed by its date: an upsert for a known date replaces it.
type LocalStore struct {
	provider Provider
	mu       sync.Mutex
	onWrite  func()
	// gen counts writes made through Upsert* and Replace.
	gen uint64
}

// NewLocalStore returns a store over p. A nil provider is treated as Absent.
func NewLocalStore(p Provider) *LocalStore {
	if p == nil {
		p = Absent{}
	}
	return &LocalStore{provider: p}
}

// Available reports whether the store can persist data.
func (s *LocalStore) Available() bool {
	return s.provider.Available()
}

// OnWrite installs a hook run after every successful upsert.
func (s *LocalStore) OnWrite(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWrite = fn
}

func load[T Dated](ctx context.Context, p Provider, key string) ([]T, error) {
	if !p.Available() {
		return []T{}, nil
	}
	data, err := p.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save[T Dated](ctx context.Context, p Provider, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := p.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func upsert[T Dated](ctx context.Context, s *LocalStore, key string, entry T) error {
	if !s.provider.Available() {
		return nil
	}
	s.mu.Lock()
	items, err := load[T](ctx, s.provider, key)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	replaced := false
	for i := range items {
		if items[i].EntryDate() == entry.EntryDate() {
			items[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, entry)
	}
	err = save(ctx, s.provider, key, items)
	if err == nil {
		s.gen++
	}
	hook := s.onWrite
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return nil
}

func all[T Dated](ctx context.Context, s *LocalStore, key string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[T](ctx, s.provider, key)
}

func byDate[T Dated](ctx context.Context, s *LocalStore, key, date string) (T, bool, error) {
	var zero T
	items, err := all[T](ctx, s, key)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if it.EntryDate() == date {
			return it, true, nil
		}
	}
	return zero, false, nil
}

func byWeek[T Dated](ctx context.Context, s *LocalStore, key string, week int) ([]T, error) {
	items, err := all[T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, it := range items {
		if it.Week() == week {
			out = append(out, it)
		}
	}
	return out, nil
}

// UpsertWorkout stores w, replacing any workout with the same date.
func (s *LocalStore) UpsertWorkout(ctx context.Context, w models.WorkoutEntry) error {
	return upsert(ctx, s, workoutsKey, w)
}

// UpsertSmoking stores e, replacing any smoking entry with the same date.
func (s *LocalStore) UpsertSmoking(ctx context.Context, e models.SmokingEntry) error {
	return upsert(ctx, s, smokingKey, e)
}

// Workouts returns every stored workout in storage order.
func (s *LocalStore) Workouts(ctx context.Context) ([]models.WorkoutEntry, error) {
	return all[models.WorkoutEntry](ctx, s, workoutsKey)
}

// Smoking returns every stored smoking entry in storage order.
func (s *LocalStore) Smoking(ctx context.Context) ([]models.SmokingEntry, error) {
	return all[models.SmokingEntry](ctx, s, smokingKey)
}

// WorkoutByDate returns the workout logged for date, if any.
func (s *LocalStore) WorkoutByDate(ctx context.Context, date string) (models.WorkoutEntry, bool, error) {
	return byDate[models.WorkoutEntry](ctx, s, workoutsKey, date)
}

// SmokingByDate returns the smoking entry logged for date, if any.
func (s *LocalStore) SmokingByDate(ctx context.Context, date string) (models.SmokingEntry, bool, error) {
	return byDate[models.SmokingEntry](ctx, s, smokingKey, date)
}

// WorkoutsByWeek returns the workouts whose stored week number is week.
func (s *LocalStore) WorkoutsByWeek(ctx context.Context, week int) ([]models.WorkoutEntry, error) {
	return byWeek[models.WorkoutEntry](ctx, s, workoutsKey, week)
}

// SmokingByWeek returns the smoking entries whose stored week number is week.
func (s *LocalStore) SmokingByWeek(ctx context.Context, week int) ([]models.SmokingEntry, error) {
	return byWeek[models.SmokingEntry](ctx, s, smokingKey, week)
}

// Snapshot reads both collections under one lock and returns the write
// generation they belong to, for a later Adopt.
func (s *LocalStore) Snapshot(ctx context.Context) ([]models.WorkoutEntry, []models.SmokingEntry, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	workouts, err := load[models.WorkoutEntry](ctx, s.provider, workoutsKey)
	if err != nil {
		return nil, nil, 0, err
	}
	smoking, err := load[models.SmokingEntry](ctx, s.provider, smokingKey)
	if err != nil {
		return nil, nil, 0, err
	}
	return workouts, smoking, s.gen, nil
}

// changedSince returns the entries of current that are new or different
// compared to read.
func changedSince[T Dated](read, current []T) []T {
	before := make(map[string]T, len(read))
	for _, e := range read {
		before[e.EntryDate()] = e
	}
	var out []T
	for _, e := range current {
		if r, ok := before[e.EntryDate()]; !ok || !reflect.DeepEqual(r, e) {
			out = append(out, e)
		}
	}
	return out
}

// Adopt replaces both collections with the result of a sync cycle that
// started from the state returned by Snapshot. Entries written after that
// Snapshot (generation moved past gen) are laid over the result, so a write
// racing with the cycle is never lost. carried reports whether that
// happened, in which case those entries still have to reach the remote.
func (s *LocalStore) Adopt(ctx context.Context, gen uint64, read SyncResult, merged SyncResult) (carried bool, err error) {
	if !s.provider.Available() {
		return false, ErrStorageUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	workouts, smoking := merged.Workouts, merged.Smoking
	if s.gen != gen {
		curWorkouts, err := load[models.WorkoutEntry](ctx, s.provider, workoutsKey)
		if err != nil {
			return false, err
		}
		curSmoking, err := load[models.SmokingEntry](ctx, s.provider, smokingKey)
		if err != nil {
			return false, err
		}
		newWorkouts := changedSince(read.Workouts, curWorkouts)
		newSmoking := changedSince(read.Smoking, curSmoking)
		workouts = MergeByDate(workouts, newWorkouts)
		smoking = MergeByDate(smoking, newSmoking)
		carried = len(newWorkouts) > 0 || len(newSmoking) > 0
	}
	return carried, s.replaceLocked(ctx, workouts, smoking)
}

// Replace overwrites both collections. If the smoking write fails the
// workouts collection is restored, so either both change or neither does.
// The write hook is not run.
func (s *LocalStore) Replace(ctx context.Context, workouts []models.WorkoutEntry, smoking []models.SmokingEntry) error {
	if !s.provider.Available() {
		return ErrStorageUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.replaceLocked(ctx, workouts, smoking); err != nil {
		return err
	}
	s.gen++
	return nil
}

func (s *LocalStore) replaceLocked(ctx context.Context, workouts []models.WorkoutEntry, smoking []models.SmokingEntry) error {
	prev, err := s.provider.Get(ctx, workoutsKey)
	hadPrev := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("load %s: %w", workoutsKey, err)
	}

	if err := save(ctx, s.provider, workoutsKey, workouts); err != nil {
		return err
	}
	if err := save(ctx, s.provider, smokingKey, smoking); err != nil {
		if !hadPrev {
			prev = []byte("[]")
		}
		if rbErr := s.provider.Set(ctx, workoutsKey, prev); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback %s: %w", workoutsKey, rbErr))
		}
		return err
	}
	return nil
}
