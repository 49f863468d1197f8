package domain

import "slices"

// Intent is a coarse classification of what the user is looking for
type Intent string

const (
	IntentFindPerson       Intent = "find_person"
	IntentFindOrganization Intent = "find_organization"
	IntentFindResearch     Intent = "find_research"
	IntentFindMedia        Intent = "find_media"
	IntentFindProgram      Intent = "find_program"
	IntentGeneral          Intent = "general"
)

// RegionNational is the sentinel region for whole-country queries.
const RegionNational = "National"

// Pagination bounds
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchContext is derived once per query and read-only afterwards.
// Providers receive it by value and must not modify its slices.
type SearchContext struct {
	Intent         Intent
	Region         string
	EntityTypes    []ResultType
	VerifiedOnly   bool
	Tags           []string
	OrganizationID string
	Page           int
	Limit          int
}

// Clone returns a deep copy of the context.
func (c SearchContext) Clone() SearchContext {
	c.EntityTypes = slices.Clone(c.EntityTypes)
	c.Tags = slices.Clone(c.Tags)
	return c
}

// WantsType reports whether t is among the requested entity types.
func (c SearchContext) WantsType(t ResultType) bool {
	return slices.Contains(c.EntityTypes, t)
}

// HasRegion reports whether a specific region constrains the search.
// The national sentinel does not constrain anything.
func (c SearchContext) HasRegion() bool {
	return c.Region != "" && c.Region != RegionNational
}
