package http

import (
	"net/http"

	"github.com/mehdibadjian/fitness-planner/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the snapshot API.
//
// Routes:
//
//	GET /health        → "ok"
//	GET /api/snapshot  → snapshotHandler.Load
//	PUT /api/snapshot  → snapshotHandler.Save
//	GET /api/stats     → statsHandler.Dashboard
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. AllowContentType("application/json") rejects non-JSON bodies
//  3. WithRequestLogging(logger) logs every request
//  4. OwnerID reads X-Owner-ID into the request context
//  5. rateLimit, when not nil, on /api routes
func NewRouter(
	snapshotHandler *SnapshotHandler,
	statsHandler *StatsHandler,
	logger *zap.Logger,
	rateLimit func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.OwnerID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if rateLimit != nil {
			r.Use(rateLimit)
		}
		r.Get("/snapshot", snapshotHandler.Load)
		r.Put("/snapshot", snapshotHandler.Save)
		r.Get("/stats", statsHandler.Dashboard)
	})

	return r
}
