package guardrail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/researchmesh/core"
)

func newTestInputValidator() *InputValidator {
	return NewInputValidator(func(o *InputValidatorOptions) {
		o.Budgeter = NewHeuristicTokenBudgeter()
	})
}

func TestInputValidator_Idempotent(t *testing.T) {
	v := newTestInputValidator()

	for _, text := range []string{
		"quantum computing breakthroughs 2024",
		"exploit database credentials",
		strings.Repeat("x", DefaultMaxContentLength+1),
	} {
		first := v.Check(text)
		second := v.Check(text)
		assert.Equal(t, first, second, "verdict must be a pure function of the text")
	}
}

func TestInputValidator_ShortCircuitReasons(t *testing.T) {
	v := newTestInputValidator()

	blocked := v.Check("exploit database credentials")
	assert.False(t, blocked.Allowed)
	assert.Equal(t, "blocked_term:exploit", blocked.Reason)

	tooLong := v.Check(strings.Repeat("x", DefaultMaxContentLength+1))
	assert.False(t, tooLong.Allowed)
	assert.Equal(t, "content_length_exceeded", tooLong.Reason)

	clean := v.Check("renewable energy storage trends")
	assert.True(t, clean.Allowed)
}

func TestInputValidator_Sanitize(t *testing.T) {
	v := newTestInputValidator()

	out := v.Sanitize("  topic\x00 with\x1b control chars\n kept newline  ")
	assert.NotContains(t, out, "\x00")
	assert.NotContains(t, out, "\x1b")
	assert.Contains(t, out, "\n")
}

func TestOutputValidator_ResearchRequiresCitations(t *testing.T) {
	v := NewOutputValidator(func(o *OutputValidatorOptions) {
		o.Input = newTestInputValidator()
		o.MinConfidence = 0.1
	})

	body := strings.Repeat("finding sentence. ", 20)
	noCitations := v.Check(core.ReportResearch, body)
	assert.False(t, noCitations.Allowed)
	assert.Equal(t, "missing_citations", noCitations.Reason)

	withURL := v.Check(core.ReportResearch, body+"\nSource: https://example.org/paper")
	assert.True(t, withURL.Allowed)

	// summaries skip the citation requirement
	assert.True(t, v.Check(core.ReportSummary, body).Allowed)
}

func TestOutputValidator_RejectsShortBody(t *testing.T) {
	v := NewOutputValidator(func(o *OutputValidatorOptions) {
		o.Input = newTestInputValidator()
	})

	verdict := v.Check(core.ReportSummary, "too short")
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "output_too_short", verdict.Reason)
}

func TestOutputValidator_ConfidenceHeuristic(t *testing.T) {
	v := NewOutputValidator(func(o *OutputValidatorOptions) {
		o.Input = newTestInputValidator()
	})

	long := strings.Repeat("substantial analysis. ", 120) +
		"Source: https://example.org/a Source: https://example.org/b Source: https://example.org/c"
	assert.GreaterOrEqual(t, v.Confidence(long), DefaultMinConfidence)
	assert.True(t, v.Check(core.ReportResearch, long).Allowed)

	thin := "brief note. Source: https://example.org"
	assert.Less(t, v.Confidence(thin), DefaultMinConfidence)
}

func TestSanitizeURL(t *testing.T) {
	ok, err := SanitizeURL(" https://example.org/path ")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.org/path", ok)

	for _, raw := range []string{"javascript:alert(1)", "file:///etc/passwd", "ftp://host/x", ""} {
		_, err := SanitizeURL(raw)
		assert.Error(t, err, "url %q should be rejected", raw)
	}
}
