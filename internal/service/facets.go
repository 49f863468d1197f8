package service

import "github.com/cloo-solutions/justicesearch/internal/domain"

// UnknownRegion is the facet bucket for results without a region.
const UnknownRegion = "unknown"

// ComputeFacets counts results by type, region and source. It is meant to
// run over the full merged set, before pagination.
func ComputeFacets(results []domain.SearchResult) domain.SearchFacets {
	f := domain.EmptyFacets()
	for _, r := range results {
		f.ByType[string(r.Type)]++

		region := r.Metadata.Region()
		if region == "" {
			region = UnknownRegion
		}
		f.ByRegion[region]++

		f.BySource[string(r.Source.Name)]++
	}
	f.Total = len(results)
	return f
}
