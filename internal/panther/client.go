package panther

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

	"github.com/google/uuid"

	"github.com/ari-wein/mcp-panther/pkg/logging"
)

const defaultTimeout = 30 * time.Second

// Client is a scoped REST client for one Panther instance. It attaches the
// API token per request, classifies response status codes against a
// caller-declared expected set, and shares a pooled http.Client that is safe
// for concurrent use. It never retries.
type Client struct {
	baseURL string
	tokens  TokenProvider
	httpc   *http.Client
}

// NewClient creates a client for the given Panther REST base URL. A zero
// timeout falls back to the default of 30s.
func NewClient(baseURL string, tokens TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Get issues a GET request. Multi-valued query fields are serialized as
// repeated parameters (url.Values semantics), matching the Panther API's
// filter conventions.
func (c *Client) Get(ctx context.Context, path string, query url.Values, expected ...int) (map[string]any, int, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, expected)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, expected ...int) (map[string]any, int, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, expected)
}

// Patch issues a PATCH request with a JSON body. Panther bulk updates answer
// 204 with an empty body on success.
func (c *Client) Patch(ctx context.Context, path string, body any, expected ...int) (map[string]any, int, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body, expected)
}

// do executes one request and classifies the response. A status code in the
// expected set returns (decoded body, status, nil) so callers can branch on
// endpoint-defined soft outcomes; any other status returns an
// *UnexpectedStatusError. Network failures return a *TransportError. The
// response body is drained and closed on every path.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, expected []int) (map[string]any, int, error) {
	op := fmt.Sprintf("%s %s", method, path)

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request body for %s: %w", op, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("building request for %s: %w", op, err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("resolving API token for %s: %w", op, err)
	}
	req.Header.Set("X-API-Key", token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}

	logging.Debug("Client", "%s returned %d (%d bytes)", op, resp.StatusCode, len(raw))

	if !statusExpected(resp.StatusCode, expected) {
		return nil, 0, &UnexpectedStatusError{Status: resp.StatusCode, Body: raw}
	}

	if resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil, resp.StatusCode, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, 0, fmt.Errorf("decoding response from %s (status %d): %w", op, resp.StatusCode, err)
	}
	return decoded, resp.StatusCode, nil
}

func statusExpected(status int, expected []int) bool {
	for _, code := range expected {
		if status == code {
			return true
		}
	}
	return false
}

// TodayRange returns the start and end of the current UTC day in RFC3339.
// Alert listing defaults to this range when the caller supplies neither a
// date range nor a detection ID.
func TodayRange() (string, string) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)
	return start.Format(time.RFC3339), end.Format(time.RFC3339)
}
