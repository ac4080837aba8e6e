package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"markbook/internal/shared"
)

// HTTPBackend implements Backend against the mark-set service's JSON API.
// The service proxies the calc collaborator's routes, so one base URL
// covers the whole contract.
type HTTPBackend struct {
	baseURL string
	http    *http.Client
}

// NewHTTPBackend creates a backend client against the given base URL
// (e.g. "http://localhost:8080").
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope mirrors the standard {success, data, message} response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Open implements Backend.
func (b *HTTPBackend) Open(ctx context.Context, classID, markSetID string) (*OpenResult, error) {
	url := fmt.Sprintf("%s/api/classes/%s/marksets/%s/open", b.baseURL, classID, markSetID)

	var result OpenResult
	if err := b.do(ctx, http.MethodPost, url, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get implements Backend.
func (b *HTTPBackend) Get(ctx context.Context, classID, markSetID string, rowStart, rowCount, colStart, colCount int) ([][]*float64, error) {
	url := fmt.Sprintf("%s/api/classes/%s/marksets/%s/cells?rowStart=%d&rowCount=%d&colStart=%d&colCount=%d",
		b.baseURL, classID, markSetID, rowStart, rowCount, colStart, colCount)

	var result struct {
		Cells [][]*float64 `json:"cells"`
	}
	if err := b.do(ctx, http.MethodGet, url, nil, &result); err != nil {
		return nil, err
	}
	return result.Cells, nil
}

// UpdateCell implements Backend.
func (b *HTTPBackend) UpdateCell(ctx context.Context, classID, markSetID string, row, col int, value *float64, editKind string) error {
	url := fmt.Sprintf("%s/api/classes/%s/marksets/%s/cells/%d/%d", b.baseURL, classID, markSetID, row, col)

	body := map[string]interface{}{
		"value":     value,
		"edit_kind": editKind,
	}
	return b.do(ctx, http.MethodPut, url, body, nil)
}

// BulkUpdate implements Backend.
func (b *HTTPBackend) BulkUpdate(ctx context.Context, classID, markSetID string, edits []shared.EditInstruction) error {
	url := fmt.Sprintf("%s/api/classes/%s/marksets/%s/cells/bulk", b.baseURL, classID, markSetID)

	body := map[string]interface{}{
		"edits": edits,
	}
	return b.do(ctx, http.MethodPost, url, body, nil)
}

// AssessmentStats implements Backend.
func (b *HTTPBackend) AssessmentStats(ctx context.Context, classID, markSetID string) ([]shared.AssessmentStats, error) {
	url := fmt.Sprintf("%s/api/classes/%s/marksets/%s/stats/assessments", b.baseURL, classID, markSetID)

	var result []shared.AssessmentStats
	if err := b.do(ctx, http.MethodGet, url, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSetSummary implements Backend.
func (b *HTTPBackend) MarkSetSummary(ctx context.Context, classID, markSetID string) ([]shared.StudentSummary, error) {
	url := fmt.Sprintf("%s/api/classes/%s/marksets/%s/stats/summary", b.baseURL, classID, markSetID)

	var result []shared.StudentSummary
	if err := b.do(ctx, http.MethodGet, url, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// do issues one request and unwraps the JSON envelope. out may be nil for
// acknowledgement-only calls.
func (b *HTTPBackend) do(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		if env.Message != "" {
			return fmt.Errorf("backend error (%d): %s", resp.StatusCode, env.Message)
		}
		return fmt.Errorf("backend error (%d)", resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode backend payload: %w", err)
		}
	}
	return nil
}
