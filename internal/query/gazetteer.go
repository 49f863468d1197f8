package query

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/cloo-solutions/justicesearch/internal/domain"
)

// Region is one geographic scope and the phrases that name it.
type Region struct {
	Code    string   `yaml:"code"`
	Aliases []string `yaml:"aliases"`
}

// Gazetteer maps query phrases to regions. Regions are tested in order and
// the first match wins; the national phrases are tested last.
type Gazetteer struct {
	Regions  []Region `yaml:"regions"`
	National []string `yaml:"national"`

	compiled []compiledRegion
	national *regexp.Regexp
}

type compiledRegion struct {
	code    string
	pattern *regexp.Regexp
}

// DefaultGazetteer returns the Australian states and territories.
func DefaultGazetteer() *Gazetteer {
	g := &Gazetteer{
		Regions: []Region{
			{Code: "NSW", Aliases: []string{"nsw", "new south wales", "sydney", "newcastle", "wollongong", "dubbo"}},
			{Code: "VIC", Aliases: []string{"vic", "victoria", "melbourne", "geelong", "ballarat", "bendigo"}},
			{Code: "QLD", Aliases: []string{"qld", "queensland", "brisbane", "cairns", "townsville", "gold coast", "mount isa"}},
			{Code: "WA", Aliases: []string{"wa", "western australia", "perth", "broome", "kalgoorlie"}},
			{Code: "SA", Aliases: []string{"sa", "south australia", "adelaide", "port augusta"}},
			{Code: "TAS", Aliases: []string{"tas", "tasmania", "hobart", "launceston"}},
			{Code: "NT", Aliases: []string{"nt", "northern territory", "darwin", "alice springs", "katherine"}},
			{Code: "ACT", Aliases: []string{"act", "australian capital territory", "canberra"}},
		},
		National: []string{"national", "nationally", "nationwide", "australia wide", "australia-wide", "across australia", "all states"},
	}
	// The default data is static and always compiles.
	if err := g.compile(); err != nil {
		panic(err)
	}
	return g
}

// ParseGazetteer reads a gazetteer from YAML.
func ParseGazetteer(data []byte) (*Gazetteer, error) {
	var g Gazetteer
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse gazetteer: %w", err)
	}
	if len(g.Regions) == 0 {
		return nil, fmt.Errorf("gazetteer has no regions")
	}
	if err := g.compile(); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadGazetteer reads a gazetteer YAML file.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gazetteer: %w", err)
	}
	return ParseGazetteer(data)
}

func (g *Gazetteer) compile() error {
	g.compiled = g.compiled[:0]
	for _, r := range g.Regions {
		if r.Code == "" {
			return fmt.Errorf("gazetteer region without code")
		}
		aliases := r.Aliases
		if len(aliases) == 0 {
			aliases = []string{r.Code}
		}
		re, err := aliasPattern(aliases)
		if err != nil {
			return fmt.Errorf("region %s: %w", r.Code, err)
		}
		g.compiled = append(g.compiled, compiledRegion{code: r.Code, pattern: re})
	}
	g.national = nil
	if len(g.National) > 0 {
		re, err := aliasPattern(g.National)
		if err != nil {
			return fmt.Errorf("national phrases: %w", err)
		}
		g.national = re
	}
	return nil
}

// shortCodeLen is the longest alias treated as an abbreviation. Such
// aliases only match in upper case, since "act", "wa" and "sa" are also
// ordinary words.
const shortCodeLen = 3

// aliasPattern builds one word-bounded alternation. Phrases match in any
// case; abbreviations only in upper case. Longer aliases come first so
// "south australia" wins over "SA".
func aliasPattern(aliases []string) (*regexp.Regexp, error) {
	var phrases, codes []string
	for _, a := range sortByLengthDesc(aliases) {
		a = strings.TrimSpace(a)
		switch {
		case a == "":
		case isShortCode(a):
			codes = append(codes, regexp.QuoteMeta(strings.ToUpper(a)))
		default:
			words := strings.Fields(regexp.QuoteMeta(strings.ToLower(a)))
			phrases = append(phrases, strings.Join(words, `\s+`))
		}
	}

	var alts []string
	if len(phrases) > 0 {
		alts = append(alts, `(?i:`+strings.Join(phrases, "|")+`)`)
	}
	alts = append(alts, codes...)
	if len(alts) == 0 {
		return nil, fmt.Errorf("no aliases")
	}
	return regexp.Compile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

func isShortCode(alias string) bool {
	return utf8.RuneCountInString(alias) <= shortCodeLen && !strings.ContainsAny(alias, " \t")
}

func sortByLengthDesc(in []string) []string {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b string) int { return len(b) - len(a) })
	return out
}

// Detect returns the first region named in q, or "" when none is.
func (g *Gazetteer) Detect(q string) string {
	for _, r := range g.compiled {
		if r.pattern.MatchString(q) {
			return r.code
		}
	}
	if g.national != nil && g.national.MatchString(q) {
		return domain.RegionNational
	}
	return ""
}

// Strip removes every region and national phrase from q.
func (g *Gazetteer) Strip(q string) string {
	for _, r := range g.compiled {
		q = r.pattern.ReplaceAllString(q, " ")
	}
	if g.national != nil {
		q = g.national.ReplaceAllString(q, " ")
	}
	return q
}

// Codes lists the region codes in match order.
func (g *Gazetteer) Codes() []string {
	codes := make([]string, 0, len(g.compiled))
	for _, r := range g.compiled {
		codes = append(codes, r.code)
	}
	return codes
}
