package http_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mehdibadjian/fitness-planner/internal/middleware"
	"github.com/mehdibadjian/fitness-planner/internal/models"
	handler "github.com/mehdibadjian/fitness-planner/internal/server/handler/http"
	"github.com/mehdibadjian/fitness-planner/internal/tracker"
)

func newTestServer(t *testing.T, rateLimit func(http.Handler) http.Handler) (*httptest.Server, *fakeSnapshotService) {
	t.Helper()
	fake := newFakeSnapshotService()
	router := handler.NewRouter(
		&handler.SnapshotHandler{SnapshotService: fake},
		&handler.StatsHandler{StatsService: fake},
		zap.NewNop(),
		rateLimit,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, fake
}

func TestRouter_Health(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RequiresOwner(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_RejectsNonJSON(t *testing.T) {
	srv, fake := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/snapshot", bytes.NewBufferString("workouts=1"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.OwnerHeader, "u1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Zero(t, fake.saved)
}

func TestRouter_RateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, _ := newTestServer(t, middleware.RateLimit(ctx, 0.001, 1))

	get := func() int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/snapshot", nil)
		require.NoError(t, err)
		req.Header.Set(middleware.OwnerHeader, "u1")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, get())
	assert.Equal(t, http.StatusTooManyRequests, get())
}

// Two devices sharing an owner id converge through the server.
func TestRouter_DevicesConvergeThroughHTTPRemote(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ctx := context.Background()

	newDevice := func() *tracker.Session {
		remote := tracker.NewHTTPRemote(srv.Client(), srv.URL, "owner-1")
		s := tracker.NewSession(tracker.NewLocalStore(tracker.NewMemoryProvider()), remote, "owner-1", zap.NewNop())
		s.SyncDelay = time.Hour
		t.Cleanup(s.Close)
		return s
	}
	phone, laptop := newDevice(), newDevice()

	_, err := phone.SaveWorkout(ctx, models.WorkoutEntry{Date: "2024-03-01", WorkoutDone: true, Duration: models.IntPtr(30)})
	require.NoError(t, err)
	_, err = laptop.SaveSmoking(ctx, models.SmokingEntry{Date: "2024-03-01", CigarettesSmoked: 4, Target: 4})
	require.NoError(t, err)

	require.True(t, phone.ManualSync(ctx))
	require.True(t, laptop.ManualSync(ctx))
	require.True(t, phone.ManualSync(ctx))

	for _, s := range []*tracker.Session{phone, laptop} {
		w, err := s.Store().Workouts(ctx)
		require.NoError(t, err)
		sm, err := s.Store().Smoking(ctx)
		require.NoError(t, err)
		assert.Len(t, w, 1)
		assert.Len(t, sm, 1)
	}
}
