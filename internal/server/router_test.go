package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloo-solutions/justicesearch/internal/api/handlers"
	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/provider"
	"github.com/cloo-solutions/justicesearch/internal/query"
	"github.com/cloo-solutions/justicesearch/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticProvider struct {
	name    string
	results []domain.SearchResult
	lastOrg string
}

func (p *staticProvider) Name() string                         { return p.name }
func (p *staticProvider) Category() string                     { return "Programs & services" }
func (p *staticProvider) IsAvailable(ctx context.Context) bool { return true }
func (p *staticProvider) Search(ctx context.Context, q string, sc domain.SearchContext) ([]domain.SearchResult, error) {
	p.lastOrg = sc.OrganizationID
	return p.results, nil
}

func setupRouter(t *testing.T) (http.Handler, *staticProvider) {
	t.Helper()
	internal := &staticProvider{
		name: provider.StoreProviderName,
		results: []domain.SearchResult{
			{ID: "p1", Type: domain.ResultTypeProgram, Title: "Healing Circle", URL: "/programs/p1", Score: 1,
				Source: domain.Source{Name: domain.SourceInternal, Origin: "interventions"}},
		},
	}
	registry, err := provider.NewRegistry(internal)
	require.NoError(t, err)

	svc := service.NewSearchService(registry, query.NewBuilder(query.DefaultGazetteer()), service.Config{}, zap.NewNop())
	return NewRouter(RouterConfig{
		Logger:        zap.NewNop(),
		SearchHandler: handlers.NewSearchHandler(svc, registry),
	}), internal
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return w
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(router, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_Search(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(router, "/search?q=healing+programs+in+NSW")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data domain.UnifiedSearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.IntentFindProgram, resp.Data.Intent)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, 1, resp.Data.Facets.Total)
	assert.Contains(t, resp.Data.Timing, service.TimingTotal)
}

func TestRouter_SearchValidation(t *testing.T) {
	router, _ := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(router, "/search?q=").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/search?q=bail&limit=500").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/search?q=bail&mode=slow").Code)
}

func TestRouter_QuickSearch(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(router, "/search/quick?q=heal")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[`)
	assert.Contains(t, w.Body.String(), "Healing Circle")
}

func TestRouter_ScopedSearch(t *testing.T) {
	router, internal := setupRouter(t)

	w := get(router, "/organizations/org-9/search?q=healing")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "org-9", internal.lastOrg)
}

func TestRouter_Providers(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(router, "/providers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"name":"internal","category":"Programs & services","available":true}]}`, w.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := setupRouter(t)
	get(router, "/search?q=healing")

	w := get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "justicesearch_http_requests_total"))
	assert.True(t, strings.Contains(body, "justicesearch_searches_total"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := setupRouter(t)
	assert.Equal(t, http.StatusNotFound, get(router, "/organizations").Code)
}
