package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mehdibadjian/fitness-planner/internal/models"
	"github.com/mehdibadjian/fitness-planner/internal/stats"
)

const (
	// AutoSyncDelay is how long a write waits before the sync it triggers.
	AutoSyncDelay = time.Second

	lastSyncKey = "last_cloud_sync"
	ownerKey    = "fitness_user_id"
	syncTimeout = 30 * time.Second
)

// SyncResult is the outcome of one sync cycle. When Synced is false the
// collections are the local ones, untouched.
type SyncResult struct {
	Workouts []models.WorkoutEntry
	Smoking  []models.SmokingEntry
	Synced   bool
}

// Session is the per-device tracker context: it owns the local store, the
// remote snapshot store and the in-flight flag that keeps sync cycles from
// overlapping.
type Session struct {
	store   *LocalStore
	remote  RemoteStore
	log     *zap.Logger
	ownerID string

	// SyncDelay overrides AutoSyncDelay. Set it before the first write.
	SyncDelay time.Duration
	now       func() time.Time

	inFlight atomic.Bool

	timerMu sync.Mutex
	timer   *time.Timer
	closed  bool
}

// NewSession wires store and remote together and makes every store write
// schedule a sync. logger may be nil.
func NewSession(store *LocalStore, remote RemoteStore, ownerID string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		store:     store,
		remote:    remote,
		log:       logger.With(zap.String("owner", ownerID)),
		ownerID:   ownerID,
		SyncDelay: AutoSyncDelay,
		now:       time.Now,
	}
	store.OnWrite(s.ScheduleSync)
	return s
}

// OwnerID returns the identifier the session syncs under.
func (s *Session) OwnerID() string { return s.ownerID }

// Store returns the session's local store.
func (s *Session) Store() *LocalStore { return s.store }

// LoadOwnerID returns the owner id persisted in p, generating and storing a
// new one on first use.
func LoadOwnerID(ctx context.Context, p Provider) (string, error) {
	if !p.Available() {
		return "", ErrStorageUnavailable
	}
	data, err := p.Get(ctx, ownerKey)
	if err == nil && len(data) > 0 {
		return string(data), nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	id := uuid.NewString()
	if err := p.Set(ctx, ownerKey, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

// SaveWorkout validates w and upserts it. A missing id or week number is
// filled in first.
func (s *Session) SaveWorkout(ctx context.Context, w models.WorkoutEntry) (models.WorkoutEntry, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.WeekNumber == 0 {
		if d, err := models.ParseDate(w.Date); err == nil {
			w.WeekNumber = models.WeekNumber(d, models.DefaultProgramStart)
		}
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, s.store.UpsertWorkout(ctx, w)
}

// SaveSmoking validates e and upserts it. A missing id or week number is
// filled in first.
func (s *Session) SaveSmoking(ctx context.Context, e models.SmokingEntry) (models.SmokingEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.WeekNumber == 0 {
		if d, err := models.ParseDate(e.Date); err == nil {
			e.WeekNumber = models.WeekNumber(d, models.DefaultProgramStart)
		}
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	return e, s.store.UpsertSmoking(ctx, e)
}

// Dashboard aggregates the stored collections.
func (s *Session) Dashboard(ctx context.Context) (stats.Dashboard, error) {
	workouts, err := s.store.Workouts(ctx)
	if err != nil {
		return stats.Dashboard{}, err
	}
	smoking, err := s.store.Smoking(ctx)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Summarize(workouts, smoking), nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// SyncData reconciles the given local collections with the remote snapshot.
// Without a remote snapshot the local data is pushed as is. Otherwise both
// collections are merged by date with the remote copy winning, and the
// merged snapshot is pushed back. It never fails: on any error the local
// collections come back unchanged with Synced set to false.
func (s *Session) SyncData(ctx context.Context, localWorkouts []models.WorkoutEntry, localSmoking []models.SmokingEntry) SyncResult {
	res := SyncResult{Workouts: localWorkouts, Smoking: localSmoking}
	if !s.store.Available() {
		s.log.Debug("sync skipped: no local storage")
		return res
	}

	s.log.Debug("sync", zap.String("state", "fetching_remote"))
	remote, err := s.remote.Load(ctx)
	if err != nil {
		s.log.Warn("sync failed", zap.String("state", "fetching_remote"), zap.Error(err))
		return res
	}

	workouts, smoking := localWorkouts, localSmoking
	state := "push_local"
	if remote != nil {
		s.log.Debug("sync", zap.String("state", "merge"))
		if dates := displaced(localWorkouts, remote.Workouts); len(dates) > 0 {
			s.log.Warn("local workouts replaced by remote copy", zap.Strings("dates", dates))
		}
		if dates := displaced(localSmoking, remote.Smoking); len(dates) > 0 {
			s.log.Warn("local smoking entries replaced by remote copy", zap.Strings("dates", dates))
		}
		workouts = MergeByDate(localWorkouts, remote.Workouts)
		smoking = MergeByDate(localSmoking, remote.Smoking)
		state = "push_merged"
	}

	s.log.Debug("sync", zap.String("state", state))
	snap := models.Snapshot{
		Workouts: orEmpty(workouts),
		Smoking:  orEmpty(smoking),
		LastSync: s.now().UTC(),
		UserID:   s.ownerID,
	}
	if err := s.remote.Save(ctx, snap); err != nil {
		s.log.Warn("sync failed", zap.String("state", state), zap.Error(err))
		return res
	}

	s.log.Debug("sync", zap.String("state", "done"),
		zap.Int("workouts", len(workouts)), zap.Int("smoking", len(smoking)))
	return SyncResult{Workouts: workouts, Smoking: smoking, Synced: true}
}

// ManualSync runs one full cycle: read the store, sync, adopt the merged
// collections and record the sync time. If another cycle is already running
// the call is dropped and returns false without any I/O. Entries saved while
// the cycle waits on the remote are kept and trigger another sync.
func (s *Session) ManualSync(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Debug("sync already in flight, request dropped")
		return false
	}
	resync := false
	defer func() {
		s.inFlight.Store(false)
		if resync {
			s.ScheduleSync()
		}
	}()

	if !s.store.Available() {
		return false
	}
	workouts, smoking, gen, err := s.store.Snapshot(ctx)
	if err != nil {
		s.log.Error("read local collections", zap.Error(err))
		return false
	}

	res := s.SyncData(ctx, workouts, smoking)
	if !res.Synced {
		return false
	}
	read := SyncResult{Workouts: workouts, Smoking: smoking}
	carried, err := s.store.Adopt(ctx, gen, read, res)
	if err != nil {
		s.log.Error("adopt merged collections", zap.Error(err))
		return false
	}
	if carried {
		s.log.Debug("entries written during sync kept, scheduling another sync")
		resync = true
	}

	ts := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.store.provider.Set(ctx, lastSyncKey, []byte(ts)); err != nil {
		s.log.Warn("record last sync time", zap.Error(err))
	}
	s.log.Info("sync successful")
	return true
}

// LastSyncTime returns when the last successful cycle finished.
func (s *Session) LastSyncTime(ctx context.Context) (time.Time, bool) {
	if !s.store.Available() {
		return time.Time{}, false
	}
	data, err := s.store.provider.Get(ctx, lastSyncKey)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ScheduleSync runs a sync cycle once SyncDelay has passed. Calls made
// before the timer fires push it back, so a burst of writes syncs once.
func (s *Session) ScheduleSync() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.SyncDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		s.ManualSync(ctx)
	})
}

// StartAutoSync syncs every interval until ctx is cancelled.
func (s *Session) StartAutoSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cycleCtx, cancel := context.WithTimeout(ctx, syncTimeout)
				s.ManualSync(cycleCtx)
				cancel()
			}
		}
	}()
}

// Close stops a pending scheduled sync. A cycle that already started runs
// to completion.
func (s *Session) Close() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
