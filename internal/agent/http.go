package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MATHUR-LUV/Aegis/pkg/tokens"
)

// HTTPClient reaches the triage agent over HTTP/JSON. The underlying
// http.Client pools connections and is safe for concurrent use.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokens.Generator
}

// NewHTTPClient constructs an HTTPClient. tokenGen may be nil, in which case
// calls are unauthenticated.
func NewHTTPClient(baseURL string, timeout time.Duration, tokenGen *tokens.Generator) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokenGen,
	}
}

// HandleIncident posts the triage request to the agent and decodes its verdict.
func (c *HTTPClient) HandleIncident(ctx context.Context, req *TriageRequest) (*TriageResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("agent client not configured")
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/incidents", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Generate("triage")
		if err != nil {
			return nil, fmt.Errorf("sign service token: %w", err)
		}
		request.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, fmt.Errorf("agent response status %d: %s", resp.StatusCode, errBody["error"])
	}

	var result TriageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// Close releases pooled connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
