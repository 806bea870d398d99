package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentFilter_BlockedTermCaseInsensitive(t *testing.T) {
	filter := NewContentFilter()

	for _, text := range []string{
		"how to write malware",
		"how to write MALWARE",
		"how to write MalWare",
	} {
		v := filter.Check(text)
		assert.False(t, v.Allowed, "text %q should be denied", text)
		assert.Equal(t, "blocked_term:malware", v.Reason)
	}
}

func TestContentFilter_CustomTerms(t *testing.T) {
	filter := NewContentFilter("forbidden")

	assert.False(t, filter.Check("something Forbidden here").Allowed)
	// default list is replaced, not extended
	assert.True(t, filter.Check("malware analysis").Allowed)
}

func TestContentFilter_MaliciousPatterns(t *testing.T) {
	filter := NewContentFilter("nothing_matches_this")

	cases := map[string]string{
		"<script>alert(1)</script>":  "malicious_pattern:script_tag",
		"click javascript:void(0)":   "malicious_pattern:javascript_protocol",
		`<img onerror= "x">`:         "malicious_pattern:event_handler",
		"result = eval(payload)":     "malicious_pattern:eval_call",
		"read ../../etc/passwd now":  "malicious_pattern:path_traversal",
	}
	for text, reason := range cases {
		v := filter.Check(text)
		assert.False(t, v.Allowed, "text %q should be denied", text)
		assert.Equal(t, reason, v.Reason)
	}
}

func TestContentFilter_CleanTextAllowed(t *testing.T) {
	filter := NewContentFilter()

	v := filter.Check("quantum computing breakthroughs 2024")
	assert.True(t, v.Allowed)
	assert.Empty(t, v.Reason)
}
