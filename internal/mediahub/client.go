// Package mediahub is an HTTP client for the external media and
// storytelling hub.
package mediahub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	mediaPath  = "/api/v1/media"
	healthPath = "/health"

	maxErrorBody = 512

	// MaxResponseBytes caps how much of a hub response is read. A larger
	// body fails the call instead of being buffered.
	MaxResponseBytes = 8 << 20
)

// Item is one media record as the hub returns it.
type Item struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	AltText             string    `json:"alt_text"`
	URL                 string    `json:"url"`
	ThumbnailURL        string    `json:"thumbnail_url"`
	CulturalTags        []string  `json:"cultural_tags"`
	ElderApproved       bool      `json:"elder_approved"`
	CulturalSensitivity string    `json:"cultural_sensitivity"`
	OrganizationID      string    `json:"organization_id"`
	MediaType           string    `json:"media_type"`
	CreatedAt           time.Time `json:"created_at"`
}

type listResponse struct {
	Items []Item `json:"items"`
}

// ListParams filters a media listing. Zero values are omitted.
type ListParams struct {
	ProjectID      string
	MediaType      string
	ApprovedOnly   bool
	CulturalTags   []string
	OrganizationID string
	Limit          int
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.ProjectID != "" {
		v.Set("project_id", p.ProjectID)
	}
	if p.MediaType != "" {
		v.Set("media_type", p.MediaType)
	}
	if p.ApprovedOnly {
		v.Set("approved_only", "true")
	}
	if len(p.CulturalTags) > 0 {
		v.Set("cultural_tags", strings.Join(p.CulturalTags, ","))
	}
	if p.OrganizationID != "" {
		v.Set("organization_id", p.OrganizationID)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// APIError is a non-2xx answer from the hub.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("media hub error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to one media hub instance. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxBody    int64
}

// NewClient creates a Client. Deadlines come from the caller's context;
// the http.Client timeout is only a backstop.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxBody: MaxResponseBytes,
	}
}

// NewClientWithHTTP creates a Client around an existing http.Client.
func NewClientWithHTTP(baseURL, apiKey string, httpClient *http.Client) *Client {
	c := NewClient(baseURL, apiKey)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// ListMedia fetches media matching params.
func (c *Client) ListMedia(ctx context.Context, params ListParams) ([]Item, error) {
	path := mediaPath
	if q := params.values().Encode(); q != "" {
		path += "?" + q
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse media response: %w", err)
	}
	if resp.Items == nil {
		return []Item{}, nil
	}
	return resp.Items, nil
}

// Health returns nil when the hub answers its health check with 2xx.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, healthPath)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(respBody)) > c.maxBody {
		return nil, fmt.Errorf("media hub response exceeds %d bytes", c.maxBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return respBody, nil
}
