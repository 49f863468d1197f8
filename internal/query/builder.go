// Package query turns free-text search input into a classified, scoped
// search context and a cleaner matching string.
package query

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/justicesearch/internal/domain"
)

// entityKeywords maps each result type to substrings that request it.
var entityKeywords = map[domain.ResultType][]string{
	domain.ResultTypeProgram:      {"program", "programme", "intervention", "initiative", "diversion", "camp", "workshop"},
	domain.ResultTypeService:      {"service", "support", "help", "legal aid", "counselling", "housing", "clinic"},
	domain.ResultTypePerson:       {"people", "person", "who ", "staff", "mentor", "worker", "expert", "profile", "founder"},
	domain.ResultTypeOrganization: {"organisation", "organization", "charity", "charities", "agency", "agencies", "ngo", "corporation", "non-profit", "nonprofit"},
	domain.ResultTypeMedia:        {"photo", "image", "picture", "video", "film", "audio", "podcast", "media", "gallery"},
	domain.ResultTypeStory:        {"story", "stories", "storyteller", "testimon"},
	domain.ResultTypeResearch:     {"research", "study", "studies", "evidence", "evaluation", "report", "inquiry"},
	domain.ResultTypeNews:         {"news", "article", "announcement", "media release"},
}

// tagVocabulary is the fixed set of domain and cultural tags.
var tagVocabulary = []string{
	"healing",
	"cultural",
	"culture",
	"country",
	"elder",
	"aboriginal",
	"torres strait",
	"indigenous",
	"first nations",
	"youth",
	"family",
	"community",
	"mentoring",
	"education",
	"employment",
	"mental health",
	"wellbeing",
	"sport",
	"language",
	"women",
	"diversion",
	"bail",
	"restorative",
	"justice reinvestment",
}

var verifiedPattern = regexp.MustCompile(`(?i)elder\s*approved`)

var fillerPattern = regexp.MustCompile(`(?i)\b(?:a|an|the|in|on|at|of|for|to|from|near|around|with|and|or|by|about|find|search|searching|show|me|get|list|looking|look|want|need|i|my|any|some|all|please)\b`)

var spacePattern = regexp.MustCompile(`\s+`)

// Builder derives search contexts. It is safe for concurrent use.
type Builder struct {
	gazetteer *Gazetteer
}

// NewBuilder creates a Builder. A nil gazetteer selects DefaultGazetteer.
func NewBuilder(g *Gazetteer) *Builder {
	if g == nil {
		g = DefaultGazetteer()
	}
	return &Builder{gazetteer: g}
}

// Gazetteer returns the region data the builder uses.
func (b *Builder) Gazetteer() *Gazetteer {
	return b.gazetteer
}

// Build derives the search context for q. Page and Limit are left for the
// caller to fill in.
func (b *Builder) Build(q string) domain.SearchContext {
	return domain.SearchContext{
		Intent:       Classify(q),
		Region:       b.DetectRegion(q),
		EntityTypes:  DetectEntityTypes(q),
		VerifiedOnly: IsVerifiedOnly(q),
		Tags:         ExtractTags(q),
	}
}

// DetectRegion returns the region named in q, "National" for whole-country
// phrases, or "" when the query names no geography.
func (b *Builder) DetectRegion(q string) string {
	return b.gazetteer.Detect(q)
}

// Normalize strips geography and filler words from q. When nothing useful
// is left it returns q unchanged so the search stays runnable.
func (b *Builder) Normalize(q string) string {
	out := b.gazetteer.Strip(q)
	out = fillerPattern.ReplaceAllString(out, " ")
	out = strings.TrimSpace(spacePattern.ReplaceAllString(out, " "))
	if out == "" {
		return q
	}
	return out
}

// DetectEntityTypes returns the result types q asks for, in canonical
// order. It never returns an empty slice.
func DetectEntityTypes(q string) []domain.ResultType {
	lower := strings.ToLower(q)
	var types []domain.ResultType
	for _, t := range domain.AllResultTypes {
		for _, kw := range entityKeywords[t] {
			if strings.Contains(lower, kw) {
				types = append(types, t)
				break
			}
		}
	}
	if len(types) == 0 {
		return append([]domain.ResultType(nil), domain.DefaultEntityTypes...)
	}
	return types
}

// IsVerifiedOnly reports whether q opts into elder-approved content only.
func IsVerifiedOnly(q string) bool {
	return verifiedPattern.MatchString(q)
}

// ExtractTags returns the vocabulary tags contained in q.
func ExtractTags(q string) []string {
	lower := strings.ToLower(q)
	var tags []string
	for _, tag := range tagVocabulary {
		if strings.Contains(lower, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}
