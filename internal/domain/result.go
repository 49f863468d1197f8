package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ResultType is the kind of entity a search hit refers to
type ResultType string

const (
	ResultTypeProgram      ResultType = "program"
	ResultTypeService      ResultType = "service"
	ResultTypePerson       ResultType = "person"
	ResultTypeOrganization ResultType = "organization"
	ResultTypeMedia        ResultType = "media"
	ResultTypeStory        ResultType = "story"
	ResultTypeResearch     ResultType = "research"
	ResultTypeNews         ResultType = "news"
)

// AllResultTypes lists every result type in display order.
var AllResultTypes = []ResultType{
	ResultTypeProgram,
	ResultTypeService,
	ResultTypePerson,
	ResultTypeOrganization,
	ResultTypeMedia,
	ResultTypeStory,
	ResultTypeResearch,
	ResultTypeNews,
}

// DefaultEntityTypes is used when a query names no entity type.
var DefaultEntityTypes = []ResultType{
	ResultTypeProgram,
	ResultTypeService,
	ResultTypeOrganization,
	ResultTypePerson,
}

// ParseResultType parses a result type, accepting "intervention" as an alias of program.
func ParseResultType(s string) (ResultType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "intervention" {
		return ResultTypeProgram, nil
	}
	t := ResultType(v)
	if !t.Valid() {
		return "", Validation(ErrInvalidEntityType, fmt.Sprintf("unknown entity type %q", s))
	}
	return t, nil
}

// Valid reports whether t is a known result type.
func (t ResultType) Valid() bool {
	switch t {
	case ResultTypeProgram, ResultTypeService, ResultTypePerson, ResultTypeOrganization,
		ResultTypeMedia, ResultTypeStory, ResultTypeResearch, ResultTypeNews:
		return true
	}
	return false
}

// SourceName identifies where a result came from
type SourceName string

const (
	SourceInternal SourceName = "internal"
	SourceMediaHub SourceName = "media_hub"
	SourceExternal SourceName = "external"
)

// Source is the provenance of a result. Origin is the table, collection or
// API path the hit was read from and exists for debugging.
type Source struct {
	Name   SourceName `json:"name"`
	Origin string     `json:"origin,omitempty"`
}

// DescriptionPreviewLength is the maximum rune length of a result description.
const DescriptionPreviewLength = 200

// SearchResult is one source-agnostic hit
type SearchResult struct {
	ID          string     `json:"id"`
	Type        ResultType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	Score       float64    `json:"score"`
	Source      Source     `json:"source"`
	Metadata    Metadata   `json:"metadata,omitempty"`
}

// ResultKey identifies a logically unique result across providers.
type ResultKey struct {
	Type ResultType
	ID   string
}

// Key returns the dedup key of the result.
func (r SearchResult) Key() ResultKey {
	return ResultKey{Type: r.Type, ID: r.ID}
}

// TruncateDescription shortens s to DescriptionPreviewLength runes.
func TruncateDescription(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= DescriptionPreviewLength {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:DescriptionPreviewLength-3])) + "..."
}
