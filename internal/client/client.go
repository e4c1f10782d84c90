// Package client talks to the sets API over HTTP.
package client

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/service"
	"alcyxob/sets-tracker/internal/stats"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DeviceIDHeader identifies the calling device in request logs.
const DeviceIDHeader = "X-Device-ID"

// APIError is a non-2xx response.
type APIError struct {
	Status  int             `json:"-"`
	Message string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`

	rawBody []byte
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 && string(e.Details) != "null" {
		return fmt.Sprintf("api: %d %s %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// WorkoutOption is a catalog entry as served by /api/workouts.
type WorkoutOption struct {
	domain.WorkoutOption
	Fields domain.FieldVisibility `json:"fields"`
}

// WorkoutGroup is one catalog group.
type WorkoutGroup struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Emoji string          `json:"emoji"`
	Items []WorkoutOption `json:"items"`
}

type syncRequest struct {
	Sets       []domain.LoggedSet `json:"sets"`
	DeletedIDs []string           `json:"deletedIds"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	deviceID   string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL.
func New(baseURL, deviceID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.deviceID != "" {
		req.Header.Set(DeviceIDHeader, c.deviceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, rawBody: raw}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
			if apiErr.Message == "" {
				apiErr.Message = resp.Status
			}
		}
		return nil, apiErr
	}
	return raw, nil
}

// List returns every stored set, newest first.
func (c *Client) List(ctx context.Context) ([]domain.LoggedSet, error) {
	return c.ListDay(ctx, "")
}

// ListDay returns the sets performed on one Pacific day, or all sets when day is empty.
func (c *Client) ListDay(ctx context.Context, day string) ([]domain.LoggedSet, error) {
	var query url.Values
	if day != "" {
		query = url.Values{"day": {day}}
	}
	var sets []domain.LoggedSet
	if err := c.do(ctx, http.MethodGet, "/api/sets", query, nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// Push sends the full local state and returns what the server holds afterwards.
func (c *Client) Push(ctx context.Context, sets []domain.LoggedSet, deletedIDs []string) ([]domain.LoggedSet, error) {
	if sets == nil {
		sets = []domain.LoggedSet{}
	}
	if deletedIDs == nil {
		deletedIDs = []string{}
	}
	var stored []domain.LoggedSet
	if err := c.do(ctx, http.MethodPut, "/api/sets", nil, syncRequest{Sets: sets, DeletedIDs: deletedIDs}, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Create logs a set on the server, which assigns its id.
func (c *Client) Create(ctx context.Context, in domain.SetInput) (*domain.LoggedSet, error) {
	var created domain.LoggedSet
	if err := c.do(ctx, http.MethodPost, "/api/sets", nil, in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies patch to the stored set id.
func (c *Client) Update(ctx context.Context, id string, patch domain.SetPatch) (*domain.LoggedSet, error) {
	fields, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	body := map[string]json.RawMessage{}
	if err := json.Unmarshal(fields, &body); err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	body["id"], _ = json.Marshal(id)

	var updated domain.LoggedSet
	if err := c.do(ctx, http.MethodPatch, "/api/sets", nil, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes id. Deleting a missing id succeeds.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sets", url.Values{"id": {id}}, nil, nil)
}

// Export returns the raw sets_export_v1 document.
func (c *Client) Export(ctx context.Context, day string) ([]byte, error) {
	var query url.Values
	if day != "" {
		query = url.Values{"day": {day}}
	}
	return c.doRaw(ctx, http.MethodGet, "/api/sets/export", query, nil)
}

// Upload asks the server to store an export in its bucket.
func (c *Client) Upload(ctx context.Context, day string) (*service.ExportUpload, error) {
	var query url.Values
	if day != "" {
		query = url.Values{"day": {day}}
	}
	var upload service.ExportUpload
	if err := c.do(ctx, http.MethodPost, "/api/sets/export", query, nil, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// Stats returns trend series for r. workoutType may be empty.
func (c *Client) Stats(ctx context.Context, r stats.Range, workoutType string) (*service.Trends, error) {
	query := url.Values{}
	if r.From != "" {
		query.Set("from", r.From)
	}
	if r.To != "" {
		query.Set("to", r.To)
	}
	if workoutType != "" {
		query.Set("workoutType", workoutType)
	}
	var trends service.Trends
	if err := c.do(ctx, http.MethodGet, "/api/sets/stats", query, nil, &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

// Workouts returns the workout catalog.
func (c *Client) Workouts(ctx context.Context) ([]WorkoutGroup, error) {
	var groups []WorkoutGroup
	if err := c.do(ctx, http.MethodGet, "/api/workouts", nil, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// StoreCheck returns the server's store diagnostics. A failing store is not
// an error here; inspect OK.
func (c *Client) StoreCheck(ctx context.Context) (*service.StoreCheck, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/store-check", nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusInternalServerError {
		// The failure body is itself a StoreCheck.
		var check service.StoreCheck
		if json.Unmarshal(apiErr.rawBody, &check) == nil {
			return &check, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	var check service.StoreCheck
	if err := json.Unmarshal(raw, &check); err != nil {
		return nil, fmt.Errorf("decode store check: %w", err)
	}
	return &check, nil
}
