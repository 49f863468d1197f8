package service

import (
	"slices"
	"strings"

	"github.com/cloo-solutions/justicesearch/internal/domain"
)

const maxSuggestions = 3

var intentSuffixes = map[domain.Intent][]string{
	domain.IntentFindProgram:      {"outcomes", "evaluation"},
	domain.IntentFindPerson:       {"organization"},
	domain.IntentFindOrganization: {"programs"},
	domain.IntentFindResearch:     {"evidence"},
	domain.IntentFindMedia:        {"stories"},
	domain.IntentGeneral:          {"programs"},
}

// GenerateSuggestions proposes up to three follow-up queries for q. Queries
// with no region, or a single state, also get a nationwide variant.
// Suggestions are distinct and never repeat q.
func GenerateSuggestions(q string, intent domain.Intent, region string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}

	suffixes := intentSuffixes[intent]
	if region != domain.RegionNational {
		suffixes = append(slices.Clip(suffixes), "nationally")
	}

	lower := strings.ToLower(q)
	seen := map[string]struct{}{lower: {}}
	out := make([]string, 0, maxSuggestions)
	for _, suffix := range suffixes {
		c := q + " " + suffix
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup || endsWithWord(lower, suffix) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// endsWithWord reports whether q already ends in word, so "youth programs"
// is not offered "youth programs programs".
func endsWithWord(q, word string) bool {
	return q == word || strings.HasSuffix(q, " "+word)
}
