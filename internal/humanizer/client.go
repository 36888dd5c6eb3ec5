package humanizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DualDorans/ai-humanizer-project/internal/config"
)

const defaultUserAgent = "ai-humanizer-project/1.0"

// Submission is the payload of POST /submit on the external API.
type Submission struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	Readability  string `json:"readability"`
	Purpose      string `json:"purpose"`
	Strength     string `json:"strength"`
	Model        string `json:"model"`
	UserAgent    string `json:"user_agent,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	URL          string `json:"url,omitempty"`
}

// SubmitResult is the typed outcome of a submission attempt. Transport and
// API errors are folded into Success/Error; they never escape as raw errors.
type SubmitResult struct {
	Success bool
	ID      string
	Error   string
}

// FetchResult is the typed outcome of a poll attempt. A successful response
// without output means the document is still processing, not an error.
type FetchResult struct {
	Success bool
	Output  string
	Ready   bool
	Error   string
}

// Client talks to the external humanization API. It is stateless and safe
// for concurrent use.
type Client struct {
	cfg    config.HumanizerConfig
	client *http.Client
}

func NewClient(cfg config.HumanizerConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit sends the document for humanization and returns the external id to
// poll with. The stylistic parameters come from configuration; only id and
// content vary per call.
func (c *Client) Submit(ctx context.Context, id, content string) SubmitResult {
	sub := Submission{
		ID:           id,
		Content:      content,
		Readability:  c.cfg.Readability,
		Purpose:      c.cfg.Purpose,
		Strength:     c.cfg.Strength,
		Model:        c.cfg.Model,
		UserAgent:    defaultUserAgent,
		DocumentType: "Text",
		URL:          "https://example.com/",
	}

	var respBody struct {
		ID string `json:"id"`
	}
	if errDetail := c.post(ctx, "/submit", sub, &respBody); errDetail != "" {
		return SubmitResult{Success: false, Error: fmt.Sprintf("Submit failed: %s", errDetail)}
	}

	return SubmitResult{Success: true, ID: respBody.ID}
}

// Fetch polls the external API for the humanized output of a submitted
// document.
func (c *Client) Fetch(ctx context.Context, externalID string) FetchResult {
	req := struct {
		ID string `json:"id"`
	}{ID: externalID}

	var respBody struct {
		Output string `json:"output"`
	}
	if errDetail := c.post(ctx, "/document", req, &respBody); errDetail != "" {
		return FetchResult{Success: false, Error: fmt.Sprintf("Document fetch failed: %s", errDetail)}
	}

	return FetchResult{
		Success: true,
		Output:  respBody.Output,
		Ready:   respBody.Output != "",
	}
}

// post sends a JSON POST and decodes a 2xx response into out. It returns a
// non-empty error detail string on any transport or API failure.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) string {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("failed to encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Sprintf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Sprintf("network error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("(%d): %s", resp.StatusCode, errorDetails(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Sprintf("failed to decode response: %v", err)
	}
	return ""
}

// errorDetails extracts the response body for error reporting, re-encoding
// it compactly when it is valid JSON.
func errorDetails(body io.Reader) string {
	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return "No error details available"
	}

	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if compact, err := json.Marshal(parsed); err == nil {
			return string(compact)
		}
	}
	return string(raw)
}
