package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEntitySearcher struct {
	mock.Mock
}

func (m *MockEntitySearcher) Search(ctx context.Context, q repository.EntityQuery) ([]*domain.EntityRecord, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EntityRecord), args.Error(1)
}

func (m *MockEntitySearcher) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func ofType(t domain.ResultType) any {
	return mock.MatchedBy(func(q repository.EntityQuery) bool { return q.Type == t })
}

func newTestStoreProvider(t *testing.T, repo EntitySearcher) *StoreProvider {
	t.Helper()
	p, err := NewStoreProvider(repo, StoreConfig{Concurrency: 4}, nil)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func record(id string, rt domain.ResultType, title string) *domain.EntityRecord {
	return domain.NewEntityRecord(id, rt, title, "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
}

func TestStoreProvider_QueriesEachSupportedType(t *testing.T) {
	repo := new(MockEntitySearcher)
	repo.On("Search", mock.Anything, ofType(domain.ResultTypeProgram)).
		Return([]*domain.EntityRecord{record("p1", domain.ResultTypeProgram, "Healing Circle")}, nil).Once()
	repo.On("Search", mock.Anything, ofType(domain.ResultTypeService)).
		Return([]*domain.EntityRecord{record("s1", domain.ResultTypeService, "Healing Legal Service")}, nil).Once()

	p := newTestStoreProvider(t, repo)
	results, err := p.Search(context.Background(), "healing", domain.SearchContext{
		Region:      "NSW",
		EntityTypes: []domain.ResultType{domain.ResultTypeProgram, domain.ResultTypeMedia, domain.ResultTypeService},
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.ElementsMatch(t, []string{"p1", "s1"}, []string{results[0].ID, results[1].ID})
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "Search", 2)

	for _, call := range repo.Calls {
		q := call.Arguments.Get(1).(repository.EntityQuery)
		assert.Equal(t, "NSW", q.Region)
		assert.Equal(t, []string{"%healing%"}, q.Patterns)
		assert.Equal(t, defaultStoreRowLimit, q.Limit)
	}
}

func TestStoreProvider_MapsRecords(t *testing.T) {
	rec := record("abc", domain.ResultTypeProgram, "NSW Healing on Country Program")
	rec.Description = "Cultural camps for young people"
	rec.Region = "NSW"
	rec.OrganizationName = "Mudgin-gal"
	rec.ElderApproved = true

	repo := new(MockEntitySearcher)
	repo.On("Search", mock.Anything, ofType(domain.ResultTypeProgram)).
		Return([]*domain.EntityRecord{rec}, nil)

	p := newTestStoreProvider(t, repo)
	results, err := p.Search(context.Background(), "healing programs", domain.SearchContext{
		EntityTypes: []domain.ResultType{domain.ResultTypeProgram},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "/programs/abc", r.URL)
	assert.Equal(t, domain.Source{Name: domain.SourceInternal, Origin: "interventions"}, r.Source)
	assert.Equal(t, "NSW", r.Metadata.Region())
	assert.Equal(t, "Mudgin-gal", r.Metadata.String(domain.MetaOrganizationName))
	assert.True(t, r.Metadata.Bool(domain.MetaElderApproved))
	assert.GreaterOrEqual(t, r.Score, 0.6)
	assert.LessOrEqual(t, r.Score, 1.0)
}

func TestStoreProvider_NationalRegionDoesNotFilter(t *testing.T) {
	repo := new(MockEntitySearcher)
	repo.On("Search", mock.Anything, mock.MatchedBy(func(q repository.EntityQuery) bool {
		return q.Region == ""
	})).Return([]*domain.EntityRecord{}, nil).Once()

	p := newTestStoreProvider(t, repo)
	_, err := p.Search(context.Background(), "legal aid", domain.SearchContext{
		Region:      domain.RegionNational,
		EntityTypes: []domain.ResultType{domain.ResultTypeService},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStoreProvider_RegionOnlyForRegionalTables(t *testing.T) {
	repo := new(MockEntitySearcher)
	repo.On("Search", mock.Anything, mock.Anything).Return([]*domain.EntityRecord{}, nil)

	p := newTestStoreProvider(t, repo)
	_, err := p.Search(context.Background(), "elder", domain.SearchContext{
		Region:      "NSW",
		EntityTypes: []domain.ResultType{domain.ResultTypeOrganization, domain.ResultTypePerson, domain.ResultTypeResearch},
	})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Search", 3)

	regions := map[domain.ResultType]string{}
	for _, call := range repo.Calls {
		q := call.Arguments.Get(1).(repository.EntityQuery)
		regions[q.Type] = q.Region
	}
	assert.Equal(t, "NSW", regions[domain.ResultTypeOrganization])
	assert.Empty(t, regions[domain.ResultTypePerson])
	assert.Empty(t, regions[domain.ResultTypeResearch])
}

func TestStoreProvider_NothingToQuery(t *testing.T) {
	repo := new(MockEntitySearcher)
	p := newTestStoreProvider(t, repo)

	results, err := p.Search(context.Background(), "videos", domain.SearchContext{
		EntityTypes: []domain.ResultType{domain.ResultTypeMedia, domain.ResultTypeStory},
	})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	results, err = p.Search(context.Background(), "  ", domain.SearchContext{
		EntityTypes: []domain.ResultType{domain.ResultTypeProgram},
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestStoreProvider_PartialFailureKeepsResults(t *testing.T) {
	repo := new(MockEntitySearcher)
	repo.On("Search", mock.Anything, ofType(domain.ResultTypeProgram)).
		Return([]*domain.EntityRecord{record("p1", domain.ResultTypeProgram, "Youth Program")}, nil)
	repo.On("Search", mock.Anything, ofType(domain.ResultTypeService)).
		Return(nil, errors.New("relation \"services\" does not exist"))

	p := newTestStoreProvider(t, repo)
	results, err := p.Search(context.Background(), "youth", domain.SearchContext{
		EntityTypes: []domain.ResultType{domain.ResultTypeProgram, domain.ResultTypeService},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StoreProviderName, perr.Provider)
	assert.Equal(t, StoreProviderCategory, perr.Category)
	assert.False(t, perr.Timeout)
	assert.Contains(t, perr.Error(), "service")
	assert.NotContains(t, perr.Warning(), "internal")
}

func TestStoreProvider_TimeoutFlagged(t *testing.T) {
	repo := new(MockEntitySearcher)
	repo.On("Search", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("query programs: %w", context.DeadlineExceeded))

	p := newTestStoreProvider(t, repo)
	results, err := p.Search(context.Background(), "youth", domain.SearchContext{
		EntityTypes: []domain.ResultType{domain.ResultTypeProgram},
	})

	assert.Empty(t, results)
	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStoreProvider_IsAvailable(t *testing.T) {
	up := new(MockEntitySearcher)
	up.On("Ping", mock.Anything).Return(nil)
	assert.True(t, newTestStoreProvider(t, up).IsAvailable(context.Background()))

	down := new(MockEntitySearcher)
	down.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	assert.False(t, newTestStoreProvider(t, down).IsAvailable(context.Background()))
}
