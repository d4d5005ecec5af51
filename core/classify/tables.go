package classify

import (
	"regexp"
	"strings"

	"github.com/huangsam/govscope/schema"
)

// TypeRule names the keywords that select one record type.
type TypeRule struct {
	Type     string   `yaml:"type" json:"type"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DomainRule maps file path fragments to one code domain.
type DomainRule struct {
	Domain   string   `yaml:"domain" json:"domain"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// Tables holds the keyword tables used by the classifier.
// Rule order matters: earlier rules win.
type Tables struct {
	Types        []TypeRule   `yaml:"types" json:"types"`
	Domains      []DomainRule `yaml:"domains" json:"domains"`
	Critical     []string     `yaml:"critical" json:"critical"`
	CriticalTags []string     `yaml:"critical_labels" json:"critical_labels"`
	Housekeeping []string     `yaml:"housekeeping" json:"housekeeping"`
	Positive     []string     `yaml:"positive" json:"positive"`
	Negative     []string     `yaml:"negative" json:"negative"`
	Intensity    []string     `yaml:"intensity" json:"intensity"`
	Acks         []string     `yaml:"acks" json:"acks"`
	Nacks        []string     `yaml:"nacks" json:"nacks"`
}

// DefaultTables returns the built-in keyword tables.
func DefaultTables() Tables {
	return Tables{
		Types: []TypeRule{
			{Type: schema.TypeConsensus, Keywords: []string{"consensus", "soft fork", "softfork", "hard fork", "hardfork", "bip", "activation", "segwit", "taproot"}},
			{Type: schema.TypeBugfix, Keywords: []string{"fix", "bug", "crash", "regression", "error", "patch", "broken"}},
			{Type: schema.TypeFeature, Keywords: []string{"feature", "add", "implement", "introduce", "support", "new"}},
			{Type: schema.TypeDocumentation, Keywords: []string{"doc", "readme", "release notes", "typo", "comment"}},
			{Type: schema.TypeRefactor, Keywords: []string{"refactor", "cleanup", "clean up", "rename", "move", "simplify", "remove unused"}},
			{Type: schema.TypePerformance, Keywords: []string{"performance", "perf", "speed", "optimiz", "faster", "latency", "memory usage"}},
		},
		Domains: []DomainRule{
			{Domain: "consensus", Patterns: []string{"consensus/", "validation", "chainparams", "versionbits"}},
			{Domain: "networking", Patterns: []string{"net_processing", "net.", "p2p", "addrman", "protocol", "netbase"}},
			{Domain: "wallet", Patterns: []string{"wallet"}},
			{Domain: "rpc", Patterns: []string{"rpc"}},
			{Domain: "crypto", Patterns: []string{"crypto/", "secp256k1", "hash", "key."}},
			{Domain: "script", Patterns: []string{"script/"}},
			{Domain: "mining", Patterns: []string{"miner", "mining", "pow."}},
			{Domain: "testing", Patterns: []string{"test", "fuzz", "bench"}},
			{Domain: "build", Patterns: []string{"makefile", "cmake", "configure", "depends/", "build", "ci/", ".github/"}},
			{Domain: "docs", Patterns: []string{"doc/", ".md", "readme", "release-notes"}},
		},
		Critical:     []string{"security", "vulnerability", "cve", "exploit", "critical", "chain split"},
		CriticalTags: []string{"security", "critical", "priority: critical", "consensus"},
		Housekeeping: []string{"typo", "whitespace", "formatting", "lint", "nit", "spelling", "bump", "trivial"},
		Positive:     []string{"lgtm", "looks good", "approve", "great", "nice", "agree", "utack", "tack", "ack", "crack"},
		Negative:     []string{"nack", "concern", "disagree", "wrong", "broken", "reject", "not sure", "problem", "unclear"},
		Intensity:    []string{"strongly", "definitely", "absolutely", "must", "never", "critical", "!!"},
		Acks:         []string{"concept ack", "approach ack", "utack", "tack", "crack", "ack"},
		Nacks:        []string{"nack", "concept nack", "approach nack"},
	}
}

// compiled is the regular-expression form of Tables.
type compiled struct {
	types        []compiledType
	domains      []DomainRule
	critical     *regexp.Regexp
	criticalTags map[string]struct{}
	housekeeping *regexp.Regexp
	positive     *regexp.Regexp
	negative     *regexp.Regexp
	intensity    *regexp.Regexp
	acks         *regexp.Regexp
	nacks        []string
}

type compiledType struct {
	name string
	re   *regexp.Regexp
}

func compile(t Tables) compiled {
	c := compiled{
		domains:      t.Domains,
		critical:     prefixPattern(t.Critical),
		criticalTags: make(map[string]struct{}, len(t.CriticalTags)),
		housekeeping: prefixPattern(t.Housekeeping),
		positive:     wordPattern(t.Positive),
		negative:     wordPattern(t.Negative),
		intensity:    substringPattern(t.Intensity),
		acks:         wordPattern(t.Acks),
		nacks:        lowerAll(t.Nacks),
	}
	for _, rule := range t.Types {
		c.types = append(c.types, compiledType{name: rule.Type, re: prefixPattern(rule.Keywords)})
	}
	for _, tag := range t.CriticalTags {
		c.criticalTags[strings.ToLower(tag)] = struct{}{}
	}
	return c
}

// prefixPattern matches any keyword starting at a word boundary, so "fix"
// matches "fixes" but not "prefix".
func prefixPattern(words []string) *regexp.Regexp {
	return buildPattern(words, `\b(?:`, `)`)
}

// wordPattern matches any keyword as a whole word.
func wordPattern(words []string) *regexp.Regexp {
	return buildPattern(words, `\b(?:`, `)\b`)
}

func substringPattern(words []string) *regexp.Regexp {
	return buildPattern(words, `(?:`, `)`)
}

// buildPattern returns nil for an empty keyword list.
func buildPattern(words []string, open, closing string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)` + open + strings.Join(quoted, "|") + closing)
}

func matches(re *regexp.Regexp, text string) bool {
	return re != nil && re.MatchString(text)
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(w))
	}
	return out
}
