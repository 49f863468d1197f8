package query

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/justicesearch/internal/domain"
)

type intentRule struct {
	intent   domain.Intent
	patterns []*regexp.Regexp
}

// intentRules are tried in order, most specific first. The order is the
// precedence policy: a query matching both a person and a program pattern
// is a person query.
var intentRules = []intentRule{
	{
		intent: domain.IntentFindPerson,
		patterns: compileAll(
			`\bwho\s+(?:works|is|runs|leads|founded|started|manages)\b`,
			`\b(?:people|person|staff|team\s+members?|contacts?|profiles?)\b`,
			`\bmentors?\b`,
			`\b(?:youth\s+workers?|case\s+workers?|caseworkers?|advocates?|practitioners?|experts?|founders?|directors?|coordinators?|storytellers?)\b`,
		),
	},
	{
		intent: domain.IntentFindOrganization,
		patterns: compileAll(
			`\borgani[sz]ations?\b`,
			`\b(?:orgs?|charit(?:y|ies)|ngos?|non[- ]?profits?|agenc(?:y|ies)|corporations?)\b`,
			`\bcommunity[- ]controlled\b`,
			`\bwho\s+(?:provides|offers|funds|delivers)\b`,
		),
	},
	{
		intent: domain.IntentFindResearch,
		patterns: compileAll(
			`\b(?:research|stud(?:y|ies)|evidence|evaluations?|findings|statistics|stats)\b`,
			`\b(?:reports?|papers?|journals?|inquir(?:y|ies))\b`,
			`\bwhat\s+works\b`,
		),
	},
	{
		intent: domain.IntentFindMedia,
		patterns: compileAll(
			`\b(?:photos?|images?|pictures?|videos?|films?|footage|audio|podcasts?|media|gallery|artworks?)\b`,
			`\b(?:stor(?:y|ies))\b`,
		),
	},
	{
		intent: domain.IntentFindProgram,
		patterns: compileAll(
			`\b(?:programs?|programmes?|interventions?|initiatives?|services?|support)\b`,
			`\b(?:diversion|healing|mentoring|camps?|workshops?|bail|on\s+country)\b`,
			`\bjustice\s+reinvestment\b`,
		),
	},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Classify maps a raw query to one intent. It is a pure function.
func Classify(q string) domain.Intent {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return domain.IntentGeneral
	}
	for _, rule := range intentRules {
		for _, p := range rule.patterns {
			if p.MatchString(q) {
				return rule.intent
			}
		}
	}
	return domain.IntentGeneral
}
