package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/loomworks/seam/internal/layout"
	"github.com/loomworks/seam/internal/resolve"
	"github.com/loomworks/seam/internal/store"
)

// HTTPClient implements SeamClient using the seam HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Analyses ---

func (c *HTTPClient) SubmitAnalysis(ctx context.Context, req *SubmitAnalysisRequest) (*SubmitAnalysisResponse, error) {
	var resp SubmitAnalysisResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/analyses", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetAnalysis(ctx context.Context, id string) (*store.Analysis, error) {
	var analysis store.Analysis
	if err := c.doJSON(ctx, http.MethodGet, "/v1/analyses/"+url.PathEscape(id), nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (c *HTTPClient) ListAnalyses(ctx context.Context, req *ListAnalysesRequest) (*ListAnalysesResponse, error) {
	q := url.Values{}
	if req.Actor != "" {
		q.Set("actor", req.Actor)
	}
	if req.Since != "" {
		q.Set("since", req.Since)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}

	path := "/v1/analyses"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListAnalysesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeleteAnalysis(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/analyses/"+url.PathEscape(id), nil, nil)
}

// --- Derived views ---

func (c *HTTPClient) GetGraph(ctx context.Context, id string) (*layout.Layout, error) {
	var l layout.Layout
	if err := c.doJSON(ctx, http.MethodGet, "/v1/analyses/"+url.PathEscape(id)+"/graph", nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) RenderAnalysis(ctx context.Context, id string, width int, selected string) ([]string, error) {
	q := url.Values{}
	if width > 0 {
		q.Set("width", strconv.Itoa(width))
	}
	if selected != "" {
		q.Set("selected", selected)
	}
	path := "/v1/analyses/" + url.PathEscape(id) + "/render"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Diagram []string `json:"diagram"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Diagram, nil
}

func (c *HTTPClient) ListFixes(ctx context.Context, analysisID string) ([]*store.Fix, error) {
	var resp struct {
		Fixes []*store.Fix `json:"fixes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/analyses/"+url.PathEscape(analysisID)+"/fixes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fixes, nil
}

// --- Resolution ---

func (c *HTTPClient) Resolve(ctx context.Context, req *ResolveRequest) (*resolve.Result, error) {
	var result resolve.Result
	if err := c.doJSON(ctx, http.MethodPost, "/v1/resolve", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Reresolve(ctx context.Context, id string, req *ReresolveRequest) (*resolve.Result, error) {
	if req == nil {
		req = &ReresolveRequest{}
	}
	var result resolve.Result
	path := "/v1/analyses/" + url.PathEscape(id) + "/resolve"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Aggregates ---

func (c *HTTPClient) GetStats(ctx context.Context) (*store.Stats, error) {
	var stats store.Stats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// --- Events ---

// StreamEvents connects to the server's SSE stream and delivers events on the
// returned channel until ctx is cancelled or the connection drops. The channel
// is closed when the stream ends.
func (c *HTTPClient) StreamEvents(ctx context.Context, topics []string) (<-chan StreamEvent, error) {
	path := "/v1/events/stream"
	if len(topics) > 0 {
		path += "?topics=" + url.QueryEscape(strings.Join(topics, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	ch := make(chan StreamEvent, 16)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		var evt StreamEvent
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				// Blank line terminates one event.
				if evt.Topic != "" || len(evt.Data) > 0 {
					select {
					case ch <- evt:
					case <-ctx.Done():
						return
					}
				}
				evt = StreamEvent{}
			case strings.HasPrefix(line, "id:"):
				evt.ID = strings.TrimPrefix(line, "id:")
			case strings.HasPrefix(line, "event:"):
				evt.Topic = strings.TrimPrefix(line, "event:")
			case strings.HasPrefix(line, "data:"):
				evt.Data = json.RawMessage(strings.TrimPrefix(line, "data:"))
			case strings.HasPrefix(line, ":"):
				// Keepalive comment, ignore.
			}
		}
	}()
	return ch, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content is success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

var _ SeamClient = (*HTTPClient)(nil)
