package domain

// SearchFacets summarises the full merged result set
type SearchFacets struct {
	ByType   map[string]int `json:"by_type"`
	ByRegion map[string]int `json:"by_region"`
	BySource map[string]int `json:"by_source"`
	Total    int            `json:"total"`
}

// EmptyFacets returns facets with zero counts and non-nil maps.
func EmptyFacets() SearchFacets {
	return SearchFacets{
		ByType:   map[string]int{},
		ByRegion: map[string]int{},
		BySource: map[string]int{},
	}
}

// Pagination describes the page returned to the caller
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// UnifiedSearchResponse is the full search contract returned to callers
type UnifiedSearchResponse struct {
	SearchID    string           `json:"search_id"`
	Query       string           `json:"query"`
	Intent      Intent           `json:"intent"`
	Mode        string           `json:"mode"`
	Results     []SearchResult   `json:"results"`
	Facets      SearchFacets     `json:"facets"`
	Pagination  Pagination       `json:"pagination"`
	Timing      map[string]int64 `json:"timing"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}
