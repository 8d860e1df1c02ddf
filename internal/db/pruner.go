package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// pruneSyncLog drops history older than the cutoff. The newest row of every
// owner survives so each owner keeps a record of its last sync.
const pruneSyncLog = `
DELETE FROM sync_log l
 WHERE l.synced_at < $1
   AND l.id <> (SELECT MAX(id) FROM sync_log WHERE owner_id = l.owner_id)`

// SyncLogPruner trims the sync_log table to a retention window.
type SyncLogPruner struct {
	DB        *sql.DB
	Retention time.Duration
	Log       *zap.Logger

	now func() time.Time
}

// NewSyncLogPruner returns a pruner that keeps retention worth of history.
func NewSyncLogPruner(db *sql.DB, retention time.Duration, log *zap.Logger) *SyncLogPruner {
	return &SyncLogPruner{DB: db, Retention: retention, Log: log, now: time.Now}
}

// PruneOnce removes the expired rows and reports how many went.
func (p *SyncLogPruner) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.Retention).UTC()
	res, err := p.DB.ExecContext(ctx, pruneSyncLog, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sync log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune sync log: %w", err)
	}
	return n, nil
}

// Start calls PruneOnce every interval until ctx is cancelled.
func (p *SyncLogPruner) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := p.PruneOnce(ctx)
				if err != nil {
					p.Log.Error("failed to prune sync log", zap.Error(err))
					continue
				}
				if n > 0 {
					p.Log.Info("pruned sync log", zap.Int64("removed", n),
						zap.Duration("retention", p.Retention))
				}
			}
		}
	}()
}
