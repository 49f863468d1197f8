package mediahub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListMedia_SendsFiltersAndAuth(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"m1","title":"Camp photos","cultural_tags":["healing"],"elder_approved":true,"media_type":"image","created_at":"2024-05-01T10:00:00Z"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	items, err := c.ListMedia(context.Background(), ListParams{
		ProjectID:    "proj-1",
		MediaType:    "image",
		ApprovedOnly: true,
		CulturalTags: []string{"healing", "country"},
		Limit:        20,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/media", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, map[string]string{
		"project_id":    "proj-1",
		"media_type":    "image",
		"approved_only": "true",
		"cultural_tags": "healing,country",
		"limit":         "20",
	}, gotQuery)

	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].ID)
	assert.True(t, items[0].ElderApproved)
	assert.Equal(t, []string{"healing"}, items[0].CulturalTags)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), items[0].CreatedAt.UTC())
}

func TestClient_ListMedia_OmitsZeroFilters(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":null}`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, "").ListMedia(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Empty(t, rawQuery)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_ListMedia_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").ListMedia(context.Background(), ListParams{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestClient_ListMedia_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").ListMedia(context.Background(), ListParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestClient_ListMedia_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[` + strings.Repeat(`{"id":"m"},`, 100) + `{"id":"m"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	c.maxBody = 256

	_, err := c.ListMedia(context.Background(), ListParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 256 bytes")

	c.maxBody = MaxResponseBytes
	items, err := c.ListMedia(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Len(t, items, 101)
}

func TestClient_ListMedia_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, "k").ListMedia(ctx, ListParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Health(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, "k", srv.Client())
	assert.NoError(t, c.Health(context.Background()))

	healthy.Store(false)
	assert.Error(t, c.Health(context.Background()))
}
