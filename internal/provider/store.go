package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/repository"
	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const (
	StoreProviderName     = string(domain.SourceInternal)
	StoreProviderCategory = "Programs & services"

	defaultStoreConcurrency = 8
	defaultStoreRowLimit    = 100
)

// EntitySearcher is the slice of the repository the store provider needs.
type EntitySearcher interface {
	Search(ctx context.Context, q repository.EntityQuery) ([]*domain.EntityRecord, error)
	Ping(ctx context.Context) error
}

// StoreConfig tunes the store provider.
type StoreConfig struct {
	// Concurrency bounds in-flight sub-queries across all requests.
	Concurrency int
	// RowLimit caps rows read per entity type.
	RowLimit int
}

// StoreProvider searches the relational store, one sub-query per requested
// entity type, run in parallel on a shared worker pool.
type StoreProvider struct {
	repo     EntitySearcher
	pool     *ants.Pool
	rowLimit int
	logger   *zap.Logger
}

// resultPaths maps result types to the public URL prefix of their pages.
var resultPaths = map[domain.ResultType]string{
	domain.ResultTypeProgram:      "/programs/",
	domain.ResultTypeService:      "/services/",
	domain.ResultTypeOrganization: "/organizations/",
	domain.ResultTypePerson:       "/people/",
	domain.ResultTypeResearch:     "/research/",
}

// NewStoreProvider creates a StoreProvider. Call Close to release the pool.
func NewStoreProvider(repo EntitySearcher, cfg StoreConfig, logger *zap.Logger) (*StoreProvider, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultStoreConcurrency
	}
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = defaultStoreRowLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := ants.NewPool(cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("create store worker pool: %w", err)
	}

	return &StoreProvider{
		repo:     repo,
		pool:     pool,
		rowLimit: cfg.RowLimit,
		logger:   logger.With(zap.String("provider", StoreProviderName)),
	}, nil
}

// Close releases the worker pool.
func (p *StoreProvider) Close() {
	p.pool.Release()
}

func (p *StoreProvider) Name() string { return StoreProviderName }

func (p *StoreProvider) Category() string { return StoreProviderCategory }

// IsAvailable pings the database.
func (p *StoreProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()
	return p.repo.Ping(ctx) == nil
}

// Search queries every requested entity type the store holds. Types it
// does not hold (media, story, news) are skipped. A failed sub-query does
// not discard the others: their results are returned together with a
// *domain.ProviderError describing the failures.
func (p *StoreProvider) Search(ctx context.Context, query string, sc domain.SearchContext) ([]domain.SearchResult, error) {
	var types []domain.ResultType
	for _, t := range sc.EntityTypes {
		if repository.Supports(t) {
			types = append(types, t)
		}
	}
	patterns := LikePatterns(query)
	if len(types) == 0 || len(patterns) == 0 {
		return []domain.SearchResult{}, nil
	}

	base := repository.EntityQuery{
		Patterns:       patterns,
		OrganizationID: sc.OrganizationID,
		VerifiedOnly:   sc.VerifiedOnly,
		Limit:          p.rowLimit,
	}
	if sc.HasRegion() {
		base.Region = sc.Region
	}

	batches := make([][]domain.SearchResult, len(types))
	errs := make([]error, len(types))

	var wg sync.WaitGroup
	for i, t := range types {
		q := base
		q.Type = t
		if !repository.HasRegionColumn(t) {
			q.Region = ""
		}
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			batches[i], errs[i] = p.searchType(ctx, query, q, sc.Tags)
		}); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit %s sub-query: %w", t, err)
		}
	}
	wg.Wait()

	results := make([]domain.SearchResult, 0)
	var merr *multierror.Error
	for i, batch := range batches {
		if errs[i] != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", types[i], errs[i]))
			continue
		}
		results = append(results, batch...)
	}

	if err := merr.ErrorOrNil(); err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil
		p.logger.Warn("store search degraded",
			zap.Int("failed_types", merr.Len()),
			zap.Int("total_types", len(types)),
			zap.Bool("timeout", timeout),
			zap.Error(err),
		)
		return results, &domain.ProviderError{
			Provider: StoreProviderName,
			Category: StoreProviderCategory,
			Timeout:  timeout,
			Err:      err,
		}
	}

	return results, nil
}

func (p *StoreProvider) searchType(ctx context.Context, term string, q repository.EntityQuery, queryTags []string) ([]domain.SearchResult, error) {
	records, err := p.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SearchResult, 0, len(records))
	for _, rec := range records {
		meta := rec.Metadata()
		if err := meta.Validate(); err != nil {
			p.logger.Debug("dropping record with bad metadata", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		out = append(out, domain.SearchResult{
			ID:          rec.ID,
			Type:        rec.Type,
			Title:       rec.Title,
			Description: domain.TruncateDescription(rec.Description),
			URL:         resultPaths[rec.Type] + rec.ID,
			Score: Score(term, Candidate{
				Title:         rec.Title,
				Description:   rec.Description,
				Tags:          rec.Tags,
				ElderApproved: rec.ElderApproved,
			}, queryTags),
			Source: domain.Source{
				Name:   domain.SourceInternal,
				Origin: repository.TableName(rec.Type),
			},
			Metadata: meta,
		})
	}
	return out, nil
}
