package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/metrics"
	"github.com/cloo-solutions/justicesearch/internal/pagination"
	"github.com/cloo-solutions/justicesearch/internal/provider"
	"github.com/cloo-solutions/justicesearch/internal/query"
	"github.com/cloo-solutions/justicesearch/internal/telemetry"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Mode trades completeness for latency.
type Mode string

const (
	ModeFast          Mode = "fast"
	ModeComprehensive Mode = "comprehensive"
)

// ParseMode parses a search mode. The empty string selects comprehensive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeComprehensive:
		return ModeComprehensive, nil
	case ModeFast:
		return ModeFast, nil
	}
	return "", domain.Validation(domain.ErrInvalidMode, fmt.Sprintf("unknown mode %q", s))
}

const (
	defaultProviderTimeout     = 5 * time.Second
	defaultFastProviderTimeout = 1500 * time.Millisecond
	defaultQuickLimit          = 5
	minQuickQueryRunes         = 2

	// TimingTotal is the timing key holding the wall-clock time of the
	// whole search.
	TimingTotal = "total"

	searchKindFull   = "full"
	searchKindQuick  = "quick"
	searchKindScoped = "scoped"
)

// Config tunes the orchestrator. Zero values select defaults.
type Config struct {
	ProviderTimeout     time.Duration
	FastProviderTimeout time.Duration
	DefaultLimit        int
	MaxLimit            int
	QuickLimit          int
	// QuickProvider names the provider quick search is restricted to.
	QuickProvider string
}

func (c Config) withDefaults() Config {
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = defaultProviderTimeout
	}
	if c.FastProviderTimeout <= 0 {
		c.FastProviderTimeout = defaultFastProviderTimeout
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = domain.MaxLimit
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = min(domain.DefaultLimit, c.MaxLimit)
	}
	if c.QuickLimit <= 0 {
		c.QuickLimit = defaultQuickLimit
	}
	if c.QuickProvider == "" {
		c.QuickProvider = provider.StoreProviderName
	}
	return c
}

// ContextOverrides replace what the context builder detected. Zero values
// keep the detected value. Page and Limit of zero select the defaults.
type ContextOverrides struct {
	Region         string
	EntityTypes    []domain.ResultType
	VerifiedOnly   *bool
	OrganizationID string
	Page           int
	Limit          int
}

// Options are per-call search options.
type Options struct {
	Context *ContextOverrides
	// Sources disables providers by name when mapped to false.
	Sources map[string]bool
	Mode    string
}

// UUIDGenerator defines interface for search ID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// SearchService fans a query out to every enabled provider and merges what
// comes back into one ranked, faceted page.
type SearchService struct {
	registry *provider.Registry
	builder  *query.Builder
	cfg      Config
	logger   *zap.Logger
	uuidGen  UUIDGenerator
}

// NewSearchService creates a SearchService. A nil builder selects the
// default gazetteer.
func NewSearchService(registry *provider.Registry, builder *query.Builder, cfg Config, logger *zap.Logger) *SearchService {
	if builder == nil {
		builder = query.NewBuilder(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		registry: registry,
		builder:  builder,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewSearchServiceWithUUIDGen creates a SearchService with a custom search
// ID generator (for testing).
func NewSearchServiceWithUUIDGen(registry *provider.Registry, builder *query.Builder, cfg Config, logger *zap.Logger, uuidGen UUIDGenerator) *SearchService {
	s := NewSearchService(registry, builder, cfg, logger)
	s.uuidGen = uuidGen
	return s
}

// Config returns the effective configuration.
func (s *SearchService) Config() Config {
	return s.cfg
}

// Search runs a query across every enabled provider. Only validation
// errors are returned; provider failures become warnings.
func (s *SearchService) Search(ctx context.Context, q string, opts Options) (*domain.UnifiedSearchResponse, error) {
	return s.run(ctx, searchKindFull, q, opts, s.registry.Enabled(opts.Sources))
}

// ScopedSearch runs a query restricted to one organization's records
// across every enabled provider.
func (s *SearchService) ScopedSearch(ctx context.Context, organizationID, q string, opts Options) (*domain.UnifiedSearchResponse, error) {
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return nil, domain.ErrMissingOrganization
	}

	overrides := ContextOverrides{}
	if opts.Context != nil {
		overrides = *opts.Context
	}
	overrides.OrganizationID = organizationID
	opts.Context = &overrides

	return s.run(ctx, searchKindScoped, q, opts, s.registry.Enabled(opts.Sources))
}

// QuickSearch serves autocomplete: the quick provider only, a small fixed
// limit and the fast timeout. Queries shorter than two characters return
// no results without touching any provider.
func (s *SearchService) QuickSearch(ctx context.Context, q string) ([]domain.SearchResult, error) {
	if utf8.RuneCountInString(strings.TrimSpace(q)) < minQuickQueryRunes {
		return []domain.SearchResult{}, nil
	}

	p, err := s.registry.Get(s.cfg.QuickProvider)
	if err != nil {
		s.logger.Warn("quick search provider not registered", zap.String("provider", s.cfg.QuickProvider))
		return []domain.SearchResult{}, nil
	}

	resp, err := s.run(ctx, searchKindQuick, q, Options{
		Context: &ContextOverrides{Limit: s.cfg.QuickLimit},
		Mode:    string(ModeFast),
	}, []provider.Provider{p})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// outcome is what one provider call produced.
type outcome struct {
	provider string
	results  []domain.SearchResult
	err      *domain.ProviderError
	took     time.Duration
}

func (s *SearchService) run(ctx context.Context, kind, q string, opts Options, providers []provider.Provider) (*domain.UnifiedSearchResponse, error) {
	start := time.Now()

	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return nil, domain.ErrInvalidQuery
	}
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	sc, err := s.buildContext(trimmed, opts.Context)
	if err != nil {
		return nil, err
	}

	searchID := s.uuidGen.NewString()
	ctx, span := telemetry.StartSearch(ctx, searchID, kind, sc.OrganizationID, string(sc.Intent))

	term := s.builder.Normalize(trimmed)
	timeout := s.cfg.ProviderTimeout
	if mode == ModeFast {
		timeout = s.cfg.FastProviderTimeout
	}

	outcomes := s.fanOut(ctx, providers, term, sc, timeout, searchID)

	merged := mergeResults(outcomes)
	warnings := s.collectWarnings(ctx, searchID, outcomes)
	facets := ComputeFacets(merged)
	page, meta := pagination.Slice(merged, sc.Page, sc.Limit)

	timing := make(map[string]int64, len(outcomes)+1)
	for _, o := range outcomes {
		timing[o.provider] = o.took.Milliseconds()
	}
	timing[TimingTotal] = time.Since(start).Milliseconds()

	if len(warnings) > 0 {
		span.Finish(telemetry.OutcomeDegraded)
	} else {
		span.Finish(telemetry.OutcomeOK)
	}
	metrics.ObserveSearch(kind, string(mode))

	s.logger.Debug("search completed",
		zap.String("search_id", searchID),
		zap.String("kind", kind),
		zap.String("intent", string(sc.Intent)),
		zap.String("term", term),
		zap.Int("total", meta.Total),
		zap.Int("warnings", len(warnings)),
		zap.Int64("took_ms", timing[TimingTotal]),
	)

	return &domain.UnifiedSearchResponse{
		SearchID: searchID,
		Query:    trimmed,
		Intent:   sc.Intent,
		Mode:     string(mode),
		Results:  page,
		Facets:   facets,
		Pagination: domain.Pagination{
			Page:    meta.Page,
			Limit:   meta.Limit,
			Total:   meta.Total,
			HasMore: meta.HasMore,
		},
		Timing:      timing,
		Suggestions: GenerateSuggestions(trimmed, sc.Intent, sc.Region),
		Warnings:    warnings,
	}, nil
}

// buildContext derives the context for q and overlays the caller's
// overrides, validating them before any provider is called.
func (s *SearchService) buildContext(q string, o *ContextOverrides) (domain.SearchContext, error) {
	sc := s.builder.Build(q)
	sc.Page = domain.DefaultPage
	sc.Limit = s.cfg.DefaultLimit

	if o == nil {
		return sc, nil
	}

	if o.Page != 0 {
		sc.Page = o.Page
	}
	if o.Limit != 0 {
		sc.Limit = o.Limit
	}
	if err := pagination.Validate(sc.Page, sc.Limit, s.cfg.MaxLimit); err != nil {
		return domain.SearchContext{}, domain.Validation(domain.ErrInvalidPagination, err.Error())
	}

	if region := strings.TrimSpace(o.Region); region != "" {
		sc.Region = region
	}
	if len(o.EntityTypes) > 0 {
		for _, t := range o.EntityTypes {
			if !t.Valid() {
				return domain.SearchContext{}, domain.Validation(domain.ErrInvalidEntityType, fmt.Sprintf("unknown entity type %q", t))
			}
		}
		sc.EntityTypes = slices.Clone(o.EntityTypes)
	}
	if o.VerifiedOnly != nil {
		sc.VerifiedOnly = *o.VerifiedOnly
	}
	if id := strings.TrimSpace(o.OrganizationID); id != "" {
		sc.OrganizationID = id
	}

	return sc, nil
}

// fanOut calls every provider concurrently and waits for all of them to
// settle. Outcomes are returned in provider order regardless of the order
// the calls finished in.
func (s *SearchService) fanOut(ctx context.Context, providers []provider.Provider, term string, sc domain.SearchContext, timeout time.Duration, searchID string) []outcome {
	outcomes := make([]outcome, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.call(ctx, p, term, sc.Clone(), timeout, searchID)
		}()
	}
	wg.Wait()

	return outcomes
}

type searchReply struct {
	results []domain.SearchResult
	err     error
}

// call runs one provider under its own deadline. A provider that ignores
// its context is abandoned when the deadline passes; the buffered channel
// lets its goroutine finish without a reader.
func (s *SearchService) call(ctx context.Context, p provider.Provider, term string, sc domain.SearchContext, timeout time.Duration, searchID string) outcome {
	name := p.Name()
	ctx, span := telemetry.StartProviderCall(ctx, searchID, name)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	replies := make(chan searchReply, 1)
	go func() {
		results, err := p.Search(ctx, term, sc)
		replies <- searchReply{results: results, err: err}
	}()

	var reply searchReply
	select {
	case reply = <-replies:
	case <-ctx.Done():
		reply = searchReply{err: ctx.Err()}
	}

	o := outcome{
		provider: name,
		results:  reply.results,
		took:     time.Since(start),
	}
	if o.results == nil {
		o.results = []domain.SearchResult{}
	}

	failure, status := "", telemetry.OutcomeOK
	if reply.err != nil {
		o.err = asProviderError(p, reply.err)
		failure, status = metrics.ReasonError, telemetry.OutcomeFailed
		if o.err.Timeout {
			failure, status = metrics.ReasonTimeout, telemetry.OutcomeTimeout
		}
	}
	metrics.ObserveProvider(name, o.took, len(o.results), failure)
	span.Finish(status)

	return o
}

// asProviderError normalizes whatever a provider returned into a
// *domain.ProviderError carrying the provider's category.
func asProviderError(p provider.Provider, err error) *domain.ProviderError {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		if perr.Category == "" {
			perr.Category = provider.CategoryOf(p)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			perr.Timeout = true
		}
		return perr
	}
	return &domain.ProviderError{
		Provider: p.Name(),
		Category: provider.CategoryOf(p),
		Timeout:  errors.Is(err, context.DeadlineExceeded),
		Err:      err,
	}
}

// collectWarnings turns provider failures into user-facing warnings, one
// per failed provider with duplicates removed, and reports them once.
func (s *SearchService) collectWarnings(ctx context.Context, searchID string, outcomes []outcome) []string {
	var merr *multierror.Error
	var warnings, failed []string
	for _, o := range outcomes {
		if o.err == nil {
			continue
		}
		merr = multierror.Append(merr, o.err)
		failed = append(failed, o.provider)
		if !o.err.Timeout {
			telemetry.ReportProviderFailure(ctx, o.provider, o.err.Category, o.err)
		}
		if w := o.err.Warning(); !slices.Contains(warnings, w) {
			warnings = append(warnings, w)
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		s.logger.Warn("search degraded",
			zap.String("search_id", searchID),
			zap.Int("failed_providers", merr.Len()),
			zap.Error(err),
		)
		telemetry.RecordDegraded(ctx, searchID, failed)
	}
	return warnings
}

// mergeResults concatenates outcomes in provider order, keeps the first
// result seen for each (type, id) and sorts by score, highest first. Ties
// keep their merged order.
func mergeResults(outcomes []outcome) []domain.SearchResult {
	size := 0
	for _, o := range outcomes {
		size += len(o.results)
	}

	seen := make(map[domain.ResultKey]struct{}, size)
	merged := make([]domain.SearchResult, 0, size)
	for _, o := range outcomes {
		for _, r := range o.results {
			key := r.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, r)
		}
	}

	slices.SortStableFunc(merged, func(a, b domain.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return merged
}
