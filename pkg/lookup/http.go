package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL points at the iciba word-suggest endpoint, a free
	// dictionary API that answers with a short paraphrase per word.
	DefaultBaseURL = "https://dict-mobile.iciba.com/interface/index.php"

	defaultHTTPTimeout = 10 * time.Second
	maxResponseSize    = 1 << 20 // 1 MB
)

// suggestResponse mirrors the suggest API wire format.
type suggestResponse struct {
	Status  int `json:"status"`
	Message []struct {
		Key        string `json:"key"`
		Paraphrase string `json:"paraphrase"`
		Value      int    `json:"value"`
	} `json:"message"`
}

// HTTPLookup queries a remote dictionary service over HTTP.
type HTTPLookup struct {
	// BaseURL is the endpoint queried per word. Empty means
	// DefaultBaseURL.
	BaseURL string
	// Client is the HTTP client used for requests. nil means a client
	// with a sane default timeout. Per-call deadlines come from the
	// caller's context on top of this.
	Client *http.Client
}

// NewHTTPLookup returns a lookup against the default endpoint.
func NewHTTPLookup() *HTTPLookup {
	return &HTTPLookup{
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Define queries the service for word. A well-formed response with no
// entries maps to ErrNotFound; transport and decode failures are
// returned as-is so callers can tell a miss from an outage.
func (h *HTTPLookup) Define(ctx context.Context, word string) (string, error) {
	base := h.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("c", "word")
	q.Set("m", "getsuggest")
	q.Set("nums", "1")
	q.Set("is_need_mean", "0")
	q.Set("word", word)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build lookup request: %w", err)
	}

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup %q: %w", word, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup %q: unexpected status %d", word, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("lookup %q: read response: %w", word, err)
	}

	var sr suggestResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("lookup %q: decode response: %w", word, err)
	}
	if len(sr.Message) == 0 || sr.Message[0].Paraphrase == "" {
		return "", ErrNotFound
	}
	return sr.Message[0].Paraphrase, nil
}
