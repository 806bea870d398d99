package guardrail

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/researchmesh/core"
)

// DefaultBlockedTerms is the baseline harm-category blocklist applied when no
// custom terms are configured.
var DefaultBlockedTerms = []string{
	"malware", "exploit", "hack", "phishing",
	"illegal", "piracy", "crack", "keygen",
}

// maliciousPattern pairs a structural injection pattern with the category
// reported in the denial reason.
type maliciousPattern struct {
	category string
	re       *regexp.Regexp
}

var maliciousPatterns = []maliciousPattern{
	{"script_tag", regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)},
	{"javascript_protocol", regexp.MustCompile(`(?i)javascript:`)},
	{"event_handler", regexp.MustCompile(`(?i)\bon\w+\s*=`)},
	{"eval_call", regexp.MustCompile(`(?i)\beval\(`)},
	{"exec_call", regexp.MustCompile(`(?i)\bexec\(`)},
	{"path_traversal", regexp.MustCompile(`\.\./`)},
}

// ContentFilter matches free text against a fixed blocklist plus structural
// malicious-pattern checks. It is a pure function of text + static
// configuration; no hidden state, safe for concurrent use.
type ContentFilter struct {
	terms []string
}

// NewContentFilter builds a filter over the given blocked terms, falling back
// to DefaultBlockedTerms when none are provided. Terms are matched
// case-insensitively as substrings.
func NewContentFilter(terms ...string) *ContentFilter {
	if len(terms) == 0 {
		terms = DefaultBlockedTerms
	}
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return &ContentFilter{terms: lowered}
}

// Check returns a denying verdict naming the matched category when the text
// contains a blocked term or a malicious structural pattern.
func (f *ContentFilter) Check(text string) core.Verdict {
	lowered := strings.ToLower(text)
	for _, term := range f.terms {
		if strings.Contains(lowered, term) {
			return core.Deny(fmt.Sprintf("blocked_term:%s", term))
		}
	}
	for _, p := range maliciousPatterns {
		if p.re.MatchString(text) {
			return core.Deny(fmt.Sprintf("malicious_pattern:%s", p.category))
		}
	}
	return core.Allow()
}
