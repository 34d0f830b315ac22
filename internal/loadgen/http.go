package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
)

// Client talks to a running service.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Health returns nil when GET /healthz answers 200.
func (c *Client) Health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnhealthy, status)
	}
	return nil
}

// PostRows submits one batch. 202, 400 and 429 all carry an ingest result;
// the status is returned alongside it.
func (c *Client) PostRows(ctx context.Context, rows []model.RawRow) (types.IngestResult, int, error) {
	var res types.IngestResult
	status, err := c.do(ctx, http.MethodPost, "/students", rows, &res)
	if err != nil {
		return res, status, err
	}
	switch status {
	case http.StatusAccepted, http.StatusBadRequest, http.StatusTooManyRequests:
		return res, status, nil
	default:
		return res, status, fmt.Errorf("%w: POST /students returned %d", ErrStatus, status)
	}
}

// Stats fetches GET /stats.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.expect(ctx, http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cluster runs POST /clusters.
func (c *Client) Cluster(ctx context.Context, req types.ClusterRequest) (types.ClusterReport, error) {
	var out types.ClusterReport
	err := c.expect(ctx, http.MethodPost, "/clusters", req, &out)
	return out, err
}

// Coordinates fetches one student's session coordinate.
func (c *Client) Coordinates(ctx context.Context, id int64, scheme string) (model.Coordinate, error) {
	var out model.Coordinate
	path := "/students/" + strconv.FormatInt(id, 10) + "/coordinates?scheme=" + url.QueryEscape(scheme)
	err := c.expect(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// TopRisk fetches GET /risk.
func (c *Client) TopRisk(ctx context.Context, limit int) ([]model.RiskEntry, error) {
	var out []model.RiskEntry
	err := c.expect(ctx, http.MethodGet, "/risk?limit="+strconv.Itoa(limit), nil, &out)
	return out, err
}

func (c *Client) expect(ctx context.Context, method, path string, body, out any) error {
	status, err := c.do(ctx, method, path, body, out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: %s %s returned %d", ErrStatus, method, path, status)
	}
	return nil
}

// do sends body as JSON and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if out == nil || resp.StatusCode >= http.StatusInternalServerError || len(data) == 0 {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted &&
		resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusTooManyRequests {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		// Plain 400s carry an error body rather than the expected shape.
		if resp.StatusCode == http.StatusBadRequest {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}
