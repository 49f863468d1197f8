package provider

import (
	"strings"
	"unicode/utf8"
)

// maxPatternWords caps how many OR-ed patterns one query produces.
const maxPatternWords = 8

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE metacharacters in s so it matches literally
// under ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// LikePatterns turns a normalized term into contains-patterns, one per
// distinct word of two or more runes, in singular form. A term with no such
// word yields a single pattern for the whole term. An empty term yields nil.
func LikePatterns(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var patterns []string
	for _, w := range strings.Fields(term) {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		w = singular(w)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		patterns = append(patterns, "%"+EscapeLike(w)+"%")
		if len(patterns) == maxPatternWords {
			break
		}
	}
	if len(patterns) == 0 {
		return []string{"%" + EscapeLike(term) + "%"}
	}
	return patterns
}
