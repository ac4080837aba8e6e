package calcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"markbook/internal/shared"
)

// Client is the HTTP client for the calc collaborator service. Both the
// gateway's stats proxy and the grid engine's backend use it.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a calc client against the given base URL (e.g. "http://localhost:8090").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope mirrors the standard {success, data, message} response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// AssessmentStats fetches per-assessment aggregates for a mark set.
func (c *Client) AssessmentStats(ctx context.Context, markSetID string) ([]shared.AssessmentStats, error) {
	var result []shared.AssessmentStats
	if err := c.get(ctx, fmt.Sprintf("%s/calc/marksets/%s/assessments", c.baseURL, markSetID), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSetSummary fetches per-student final marks for a mark set.
func (c *Client) MarkSetSummary(ctx context.Context, markSetID string) ([]shared.StudentSummary, error) {
	var result []shared.StudentSummary
	if err := c.get(ctx, fmt.Sprintf("%s/calc/marksets/%s/summary", c.baseURL, markSetID), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build calc request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calc service request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode calc response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		if env.Message != "" {
			return fmt.Errorf("calc service error (%d): %s", resp.StatusCode, env.Message)
		}
		return fmt.Errorf("calc service error (%d)", resp.StatusCode)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode calc payload: %w", err)
	}
	return nil
}
