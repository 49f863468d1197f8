package provider

import (
	"strings"
)

// Candidate is what Score needs to know about a hit.
type Candidate struct {
	Title         string
	Description   string
	Tags          []string
	ElderApproved bool
}

const (
	scoreExact       = 1.0
	scorePrefix      = 0.8
	scoreContains    = 0.6
	scoreDescription = 0.3
	scoreCoverage    = 0.2
	scoreApproved    = 0.1
	scorePerTag      = 0.1
	scoreTagCap      = 0.2
)

// Score rates how well c matches term. The result is in [0, 1] and only
// its order relative to other scores is meaningful. queryTags are the
// cultural tags extracted from the query.
func Score(term string, c Candidate, queryTags []string) float64 {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return 0
	}
	title := strings.ToLower(strings.TrimSpace(c.Title))
	desc := strings.ToLower(c.Description)

	if title == term {
		return scoreExact
	}

	words := strings.Fields(term)

	var s float64
	switch {
	case strings.HasPrefix(title, term):
		s += scorePrefix
	case strings.Contains(title, term):
		s += scoreContains
	case len(words) > 1 && containsAllWords(title, words):
		// every word of the term is in the title, just not contiguously
		s += scoreContains
	}

	if strings.Contains(desc, term) {
		s += scoreDescription
	}

	found := 0
	for _, w := range words {
		if containsWord(title, w) || containsWord(desc, w) {
			found++
		}
	}
	s += scoreCoverage * float64(found) / float64(len(words))

	if c.ElderApproved {
		s += scoreApproved
	}

	s += tagBonus(c.Tags, queryTags)

	return clamp(s)
}

func tagBonus(tags, queryTags []string) float64 {
	if len(tags) == 0 || len(queryTags) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		have[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	var bonus float64
	for _, q := range queryTags {
		if _, ok := have[strings.ToLower(q)]; ok {
			bonus += scorePerTag
		}
	}
	if bonus > scoreTagCap {
		return scoreTagCap
	}
	return bonus
}

func containsAllWords(text string, words []string) bool {
	for _, w := range words {
		if !containsWord(text, w) {
			return false
		}
	}
	return true
}

// containsWord matches w or its singular form, so "programs" finds "program".
func containsWord(text, w string) bool {
	if strings.Contains(text, w) {
		return true
	}
	if stem := singular(w); stem != w {
		return strings.Contains(text, stem)
	}
	return false
}

func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
