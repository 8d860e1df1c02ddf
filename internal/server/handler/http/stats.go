package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mehdibadjian/fitness-planner/internal/middleware"
	"github.com/mehdibadjian/fitness-planner/internal/stats"
)

// StatsService computes dashboard statistics for an owner.
type StatsService interface {
	Dashboard(ctx context.Context, ownerID string) (stats.Dashboard, error)
}

// StatsHandler serves aggregated statistics.
type StatsHandler struct {
	StatsService StatsService
}

// Dashboard handles GET /api/stats.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.StatsService.Dashboard(ctx, middleware.GetOwnerIDFromContext(ctx))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d)
}
