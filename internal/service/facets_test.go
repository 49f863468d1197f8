package service

import (
	"testing"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeFacets(t *testing.T) {
	results := []domain.SearchResult{
		result("1", domain.ResultTypeProgram, 0.9, "NSW", domain.SourceInternal),
		result("2", domain.ResultTypeProgram, 0.8, "VIC", domain.SourceInternal),
		result("3", domain.ResultTypeService, 0.7, "NSW", domain.SourceInternal),
		result("4", domain.ResultTypeMedia, 0.6, "", domain.SourceMediaHub),
		{ID: "5", Type: domain.ResultTypeStory, Source: domain.Source{Name: domain.SourceMediaHub}},
	}

	f := ComputeFacets(results)

	assert.Equal(t, 5, f.Total)
	assert.Equal(t, map[string]int{"program": 2, "service": 1, "media": 1, "story": 1}, f.ByType)
	assert.Equal(t, map[string]int{"NSW": 2, "VIC": 1, UnknownRegion: 2}, f.ByRegion)
	assert.Equal(t, map[string]int{"internal": 3, "media_hub": 2}, f.BySource)
}

func TestComputeFacets_Empty(t *testing.T) {
	f := ComputeFacets(nil)
	assert.Equal(t, 0, f.Total)
	assert.NotNil(t, f.ByType)
	assert.NotNil(t, f.ByRegion)
	assert.NotNil(t, f.BySource)
}

func TestMergeResults(t *testing.T) {
	outcomes := []outcome{
		{provider: "a", results: []domain.SearchResult{
			result("1", domain.ResultTypeProgram, 0.2, "", domain.SourceInternal),
			result("2", domain.ResultTypeProgram, 0.6, "", domain.SourceInternal),
		}},
		{provider: "b", results: []domain.SearchResult{}},
		{provider: "c", results: []domain.SearchResult{
			result("1", domain.ResultTypeProgram, 1.0, "", domain.SourceExternal),
			result("1", domain.ResultTypeStory, 0.6, "", domain.SourceMediaHub),
		}},
	}

	merged := mergeResults(outcomes)

	keys := []domain.ResultKey{}
	for _, r := range merged {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []domain.ResultKey{
		{Type: domain.ResultTypeProgram, ID: "2"},
		{Type: domain.ResultTypeStory, ID: "1"},
		{Type: domain.ResultTypeProgram, ID: "1"},
	}, keys)
	assert.Equal(t, domain.SourceInternal, merged[2].Source.Name)
}
