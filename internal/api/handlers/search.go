package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloo-solutions/justicesearch/internal/api"
	"github.com/cloo-solutions/justicesearch/internal/api/middleware"
	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/provider"
	"github.com/cloo-solutions/justicesearch/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
)

type SearchService interface {
	Search(ctx context.Context, q string, opts service.Options) (*domain.UnifiedSearchResponse, error)
	ScopedSearch(ctx context.Context, organizationID, q string, opts service.Options) (*domain.UnifiedSearchResponse, error)
	QuickSearch(ctx context.Context, q string) ([]domain.SearchResult, error)
}

type ProviderRegistry interface {
	All() []provider.Provider
	Availability(ctx context.Context) map[string]bool
}

type SearchHandler struct {
	svc       SearchService
	providers ProviderRegistry
}

func NewSearchHandler(svc SearchService, providers ProviderRegistry) *SearchHandler {
	return &SearchHandler{svc: svc, providers: providers}
}

type QuickSearchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

type ProviderResponse struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Available bool   `json:"available"`
}

// Search handles GET /search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r.URL.Query())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), opts)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, resp)
}

// ScopedSearch handles GET /organizations/{orgID}/search.
func (h *SearchHandler) ScopedSearch(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, middleware.OrganizationParam)

	opts, err := parseOptions(r.URL.Query())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp, err := h.svc.ScopedSearch(r.Context(), orgID, r.URL.Query().Get("q"), opts)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, resp)
}

// Quick handles GET /search/quick.
func (h *SearchHandler) Quick(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.QuickSearch(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	api.Success(w, http.StatusOK, QuickSearchResponse{Results: results})
}

// Providers handles GET /providers.
func (h *SearchHandler) Providers(w http.ResponseWriter, r *http.Request) {
	availability := h.providers.Availability(r.Context())

	all := h.providers.All()
	out := make([]ProviderResponse, 0, len(all))
	for _, p := range all {
		out = append(out, ProviderResponse{
			Name:      p.Name(),
			Category:  provider.CategoryOf(p),
			Available: availability[p.Name()],
		})
	}

	api.Success(w, http.StatusOK, out)
}

// parseOptions reads search options from query parameters. An explicit page
// or limit must be a positive integer; omitting them selects the defaults.
func parseOptions(values url.Values) (service.Options, error) {
	opts := service.Options{Mode: values.Get("mode")}
	overrides := &service.ContextOverrides{Region: strings.TrimSpace(values.Get("region"))}
	set := overrides.Region != ""

	var err error
	if overrides.Page, err = positiveParam(values, "page"); err != nil {
		return opts, err
	}
	if overrides.Limit, err = positiveParam(values, "limit"); err != nil {
		return opts, err
	}
	set = set || overrides.Page != 0 || overrides.Limit != 0

	if raw := values.Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			t, err := domain.ParseResultType(part)
			if err != nil {
				return opts, err
			}
			overrides.EntityTypes = append(overrides.EntityTypes, t)
		}
		set = set || len(overrides.EntityTypes) > 0
	}

	if raw := values.Get("verified"); raw != "" {
		verified, err := cast.ToBoolE(raw)
		if err != nil {
			return opts, domain.Validation(domain.ErrInvalidParameter, "verified must be a boolean")
		}
		overrides.VerifiedOnly = &verified
		set = true
	}

	if raw := values.Get("sources"); raw != "" {
		sources, err := parseSources(raw)
		if err != nil {
			return opts, err
		}
		opts.Sources = sources
	}

	if set {
		opts.Context = overrides
	}
	return opts, nil
}

func positiveParam(values url.Values, name string) (int, error) {
	if !values.Has(name) {
		return 0, nil
	}
	n, err := strconv.Atoi(values.Get(name))
	if err != nil || n < 1 {
		return 0, domain.Validation(domain.ErrInvalidPagination, name+" must be a positive integer")
	}
	return n, nil
}

// parseSources reads "name:false,other:true". A bare name enables it.
func parseSources(raw string) (map[string]bool, error) {
	sources := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, flag, found := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, domain.Validation(domain.ErrInvalidParameter, "sources entry has no provider name")
		}
		enabled := true
		if found {
			v, err := cast.ToBoolE(strings.TrimSpace(flag))
			if err != nil {
				return nil, domain.Validation(domain.ErrInvalidParameter, "sources flag for "+name+" must be a boolean")
			}
			enabled = v
		}
		sources[name] = enabled
	}
	return sources, nil
}
