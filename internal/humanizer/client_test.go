package humanizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DualDorans/ai-humanizer-project/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.HumanizerConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Readability: "High School",
		Purpose:     "General Writing",
		Strength:    "More Human",
		Model:       "v2",
	})
}

func TestSubmitSuccess(t *testing.T) {
	var received Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submit", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{"id": received.ID})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	res := client.Submit(context.Background(), "job-123", "some text to humanize")

	assert.True(t, res.Success)
	assert.Equal(t, "job-123", res.ID)
	assert.Equal(t, "some text to humanize", received.Content)
	assert.Equal(t, "High School", received.Readability)
	assert.Equal(t, "General Writing", received.Purpose)
	assert.Equal(t, "More Human", received.Strength)
	assert.Equal(t, "v2", received.Model)
	assert.Equal(t, "Text", received.DocumentType)
}

func TestSubmitNon2xxCapturesJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"message": "quota exceeded"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	res := client.Submit(context.Background(), "job-123", "text")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Submit failed")
	assert.Contains(t, res.Error, "402")
	assert.Contains(t, res.Error, "quota exceeded")
}

func TestSubmitNon2xxCapturesRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	res := client.Submit(context.Background(), "job-123", "text")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "upstream unavailable")
}

func TestSubmitNetworkErrorIsTypedOutcome(t *testing.T) {
	// Point at a closed server so the dial fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	res := client.Submit(context.Background(), "job-123", "text")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "network error")
}

func TestFetchOutputReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/document", r.URL.Path)

		var req struct {
			ID string `json:"id"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ext-1", req.ID)

		json.NewEncoder(w).Encode(map[string]string{"output": "humanized text"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	res := client.Fetch(context.Background(), "ext-1")

	assert.True(t, res.Success)
	assert.True(t, res.Ready)
	assert.Equal(t, "humanized text", res.Output)
}

func TestFetchStillProcessingIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "ext-1"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	res := client.Fetch(context.Background(), "ext-1")

	assert.True(t, res.Success)
	assert.False(t, res.Ready)
	assert.Empty(t, res.Output)
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("unknown document"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	res := client.Fetch(context.Background(), "ext-1")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Document fetch failed")
	assert.Contains(t, res.Error, "404")
}
