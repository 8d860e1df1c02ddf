// Package http provides HTTP handlers and routing for the snapshot API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mehdibadjian/fitness-planner/internal/middleware"
	"github.com/mehdibadjian/fitness-planner/internal/models"
)

const maxSnapshotBytes = 10 << 20

// SnapshotService defines the snapshot operations required by the SnapshotHandler.
type SnapshotService interface {
	// Load returns the owner's snapshot, or nil when none is stored.
	Load(ctx context.Context, ownerID string) (*models.Snapshot, error)
	// Save replaces the owner's snapshot. Invalid payloads yield an error
	// matching models.ErrValidation.
	Save(ctx context.Context, ownerID string, snap models.Snapshot) error
}

// SnapshotHandler serves the remote snapshot used by device sync.
type SnapshotHandler struct {
	SnapshotService SnapshotService
}

// Load handles GET /api/snapshot.
// It writes the stored snapshot as JSON, or 204 No Content if the owner
// has never synced.
func (h *SnapshotHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetOwnerIDFromContext(ctx)

	snap, err := h.SnapshotService.Load(ctx, ownerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snap == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// Save handles PUT /api/snapshot.
// It decodes a snapshot body and replaces the owner's stored snapshot.
func (h *SnapshotHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetOwnerIDFromContext(ctx)

	var snap models.Snapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSnapshotBytes)).Decode(&snap); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	err := h.SnapshotService.Save(ctx, ownerID, snap)
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
