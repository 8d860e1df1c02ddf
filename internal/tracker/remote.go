package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mehdibadjian/fitness-planner/internal/models"
)

const (
	cloudBackupKey = "cloud_backup"
	apiSnapshot    = "/api/snapshot"
	ownerHeader    = "X-Owner-ID"
)

// ErrRemoteUnreachable wraps every failure talking to a remote store.
var ErrRemoteUnreachable = errors.New("remote unreachable")

// RemoteStore holds the snapshot shared between devices.
type RemoteStore interface {
	// Load returns the stored snapshot, or nil when none exists yet.
	Load(ctx context.Context) (*models.Snapshot, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap models.Snapshot) error
}

// LocalRemote simulates the cloud by keeping the snapshot in a Provider.
type LocalRemote struct {
	provider Provider
}

// NewLocalRemote returns a remote stored under the cloud_backup key of p.
func NewLocalRemote(p Provider) *LocalRemote {
	return &LocalRemote{provider: p}
}

func (r *LocalRemote) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := r.provider.Get(ctx, cloudBackupKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %w", ErrRemoteUnreachable, err)
	}
	return &snap, nil
}

func (r *LocalRemote) Save(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.provider.Set(ctx, cloudBackupKey, data); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	}
	return nil
}

// HTTPRemote talks to the snapshot API served by cmd/server.
type HTTPRemote struct {
	client  *http.Client
	baseURL string
	ownerID string
}

// NewHTTPRemote returns a remote for ownerID at baseURL. A nil client
// means http.DefaultClient.
func NewHTTPRemote(client *http.Client, baseURL, ownerID string) *HTTPRemote {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRemote{client: client, baseURL: strings.TrimRight(baseURL, "/"), ownerID: ownerID}
}

func (r *HTTPRemote) do(ctx context.Context, method string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+apiSnapshot, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(ownerHeader, r.ownerID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	}
	return resp, nil
}

func serverError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%w: server error: %s", ErrRemoteUnreachable, strings.TrimSpace(string(msg)))
}

func (r *HTTPRemote) Load(ctx context.Context) (*models.Snapshot, error) {
	resp, err := r.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, serverError(resp)
	}

	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %w", ErrRemoteUnreachable, err)
	}
	return &snap, nil
}

func (r *HTTPRemote) Save(ctx context.Context, snap models.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	resp, err := r.do(ctx, http.MethodPut, bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return serverError(resp)
	}
	return nil
}
