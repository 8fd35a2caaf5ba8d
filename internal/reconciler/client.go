package reconciler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"donationhub/internal/models"
)

// APIClient talks to the donationhub HTTP API on behalf of one signed-in user.
// It implements Fetcher and LocationSender.
type APIClient struct {
	baseURL    string
	token      string
	tab        string
	httpClient *http.Client
	now        func() time.Time
}

func NewAPIClient(baseURL, token, tab string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		tab:        tab,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch loads the feed tab and the unread notifications.
func (c *APIClient) Fetch(ctx context.Context) (*Snapshot, error) {
	feedPath := "/api/v1/feed"
	if c.tab != "" {
		feedPath += "?tab=" + url.QueryEscape(c.tab)
	}

	var feed models.Feed
	if err := c.do(ctx, http.MethodGet, feedPath, nil, &feed); err != nil {
		return nil, err
	}

	var notifications []*models.Notification
	if err := c.do(ctx, http.MethodGet, "/api/v1/notifications?unread=true", nil, &notifications); err != nil {
		return nil, err
	}

	return &Snapshot{
		Postings:      feed.Postings,
		Notifications: notifications,
		FetchedAt:     c.now(),
	}, nil
}

func (c *APIClient) SendLocation(ctx context.Context, coord models.Coordinate) (*models.LocationUpdateResult, error) {
	var result models.LocationUpdateResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/volunteers/me/location", coord, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: status %d: failed to decode response: %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != nil {
			return fmt.Errorf("%s %s: status %d: %s: %s", method, path, resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
