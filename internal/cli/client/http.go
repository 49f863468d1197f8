package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	EnvAPIURL = "JUSTICESEARCH_API_URL"

	defaultAPIURL = "http://localhost:8080"
	userAgent     = "justicesearch-cli"
)

// Client talks to a searchd instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// FromCommand resolves the API URL from the --api-url flag, then
// JUSTICESEARCH_API_URL (a .env file is honoured), then the local default.
// A nil cmd skips the flag.
func FromCommand(cmd *cobra.Command) *Client {
	_ = godotenv.Load()

	var baseURL string
	if cmd != nil {
		baseURL, _ = cmd.Flags().GetString("api-url")
	}
	if baseURL == "" {
		baseURL = os.Getenv(EnvAPIURL)
	}
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return New(baseURL)
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// ProviderStatus mirrors one entry of GET /providers.
type ProviderStatus struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Available bool   `json:"available"`
}

// Search runs a federated search. A non-empty organizationID uses the
// organization-scoped endpoint.
func (c *Client) Search(ctx context.Context, organizationID string, params url.Values) (*domain.UnifiedSearchResponse, error) {
	path := "/search"
	if organizationID != "" {
		path = "/organizations/" + url.PathEscape(organizationID) + "/search"
	}
	var resp domain.UnifiedSearchResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Quick runs a type-ahead lookup.
func (c *Client) Quick(ctx context.Context, prefix string) ([]domain.SearchResult, error) {
	var resp struct {
		Results []domain.SearchResult `json:"results"`
	}
	if err := c.get(ctx, "/search/quick", url.Values{"q": {prefix}}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Providers lists configured sources with their availability.
func (c *Client) Providers(ctx context.Context) ([]ProviderStatus, error) {
	var providers []ProviderStatus
	if err := c.get(ctx, "/providers", nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// get performs a GET and decodes the "data" member of the envelope into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach search API at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
		Code  string          `json:"code"`
	}
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode >= 400 {
		msg := envelope.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return &APIError{StatusCode: resp.StatusCode, Code: envelope.Code, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}
