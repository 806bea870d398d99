package guardrail

import (
	"regexp"
	"strings"

	"github.com/hupe1980/researchmesh/core"
)

// DefaultMaxContentLength bounds accepted input/output text in characters.
const DefaultMaxContentLength = 50000

// DefaultMinOutputLength is the minimum useful artifact body length.
const DefaultMinOutputLength = 50

// DefaultMinConfidence is the default quality threshold for research output.
// The confidence score is a heuristic (length + citation density), so the
// threshold is configuration, not contract.
const DefaultMinConfidence = 0.7

// Verdict reasons produced by the validators.
const (
	ReasonContentLength    = "content_length_exceeded"
	ReasonOutputTooShort   = "output_too_short"
	ReasonMissingCitations = "missing_citations"
	ReasonLowConfidence    = "confidence_below_threshold"
)

var (
	urlPattern      = regexp.MustCompile(`https?://[^\s]+`)
	citationPattern = regexp.MustCompile(`(?i)(source|reference|citation):`)
)

// InputValidatorOptions configures an InputValidator.
type InputValidatorOptions struct {
	Filter    *ContentFilter
	Budgeter  *TokenBudgeter
	MaxChars  int
	MaxTokens int
}

// InputValidator composes the content filter, a length bound and the token
// budgeter into one verdict. Checks short-circuit on first failure and the
// reason identifies the failing sub-check. Check is a pure function of the
// text and static configuration; repeated calls yield the same verdict.
type InputValidator struct {
	filter    *ContentFilter
	budgeter  *TokenBudgeter
	maxChars  int
	maxTokens int
}

// NewInputValidator constructs an InputValidator with defaults for any unset option.
func NewInputValidator(optFns ...func(o *InputValidatorOptions)) *InputValidator {
	opts := InputValidatorOptions{
		MaxChars:  DefaultMaxContentLength,
		MaxTokens: DefaultMaxTokens,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Filter == nil {
		opts.Filter = NewContentFilter()
	}
	if opts.Budgeter == nil {
		opts.Budgeter = NewTokenBudgeter()
	}
	return &InputValidator{
		filter:    opts.Filter,
		budgeter:  opts.Budgeter,
		maxChars:  opts.MaxChars,
		maxTokens: opts.MaxTokens,
	}
}

// Check validates the text against all input guardrails.
func (v *InputValidator) Check(text string) core.Verdict {
	if verdict := v.filter.Check(text); !verdict.Allowed {
		return verdict
	}
	if len(text) > v.maxChars {
		return core.Deny(ReasonContentLength)
	}
	if verdict := v.budgeter.Check(text, v.maxTokens); !verdict.Allowed {
		return verdict
	}
	return core.Allow()
}

// Sanitize strips control characters that carry injection risk while keeping
// ordinary whitespace intact.
func (v *InputValidator) Sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(text))
}

// OutputValidatorOptions configures an OutputValidator.
type OutputValidatorOptions struct {
	Input            *InputValidator
	MinLength        int
	MinConfidence    float64
	RequireCitations bool
}

// OutputValidator extends input validation with artifact quality checks:
// non-empty body, minimum length, a confidence heuristic and, for research
// artifacts, the presence of at least one source citation. Artifacts failing
// these checks must not be persisted or returned to the caller.
type OutputValidator struct {
	input            *InputValidator
	minLength        int
	minConfidence    float64
	requireCitations bool
}

// NewOutputValidator constructs an OutputValidator with defaults for any unset option.
func NewOutputValidator(optFns ...func(o *OutputValidatorOptions)) *OutputValidator {
	opts := OutputValidatorOptions{
		MinLength:        DefaultMinOutputLength,
		MinConfidence:    DefaultMinConfidence,
		RequireCitations: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Input == nil {
		opts.Input = NewInputValidator()
	}
	return &OutputValidator{
		input:            opts.Input,
		minLength:        opts.MinLength,
		minConfidence:    opts.MinConfidence,
		requireCitations: opts.RequireCitations,
	}
}

// Check validates an artifact body of the given kind.
func (v *OutputValidator) Check(kind core.ReportKind, text string) core.Verdict {
	if verdict := v.input.Check(text); !verdict.Allowed {
		return verdict
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < v.minLength {
		return core.Deny(ReasonOutputTooShort)
	}
	if kind == core.ReportResearch {
		if v.requireCitations && !hasCitation(text) {
			return core.Deny(ReasonMissingCitations)
		}
		if v.Confidence(text) < v.minConfidence {
			return core.Deny(ReasonLowConfidence)
		}
	}
	return core.Allow()
}

// Confidence computes the quality heuristic in [0,1]: 60% weight on body
// length (saturating at 2000 chars) and 40% on citation count (saturating at
// 3 markers).
func (v *OutputValidator) Confidence(text string) float64 {
	lengthScore := float64(len(text)) / 2000.0
	if lengthScore > 1 {
		lengthScore = 1
	}
	citations := len(urlPattern.FindAllString(text, -1)) + len(citationPattern.FindAllString(text, -1))
	citationScore := float64(citations) / 3.0
	if citationScore > 1 {
		citationScore = 1
	}
	return 0.6*lengthScore + 0.4*citationScore
}

func hasCitation(text string) bool {
	return urlPattern.MatchString(text) || citationPattern.MatchString(text)
}
