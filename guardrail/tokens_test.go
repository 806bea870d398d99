package guardrail

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTokenBudgeter_Monotonic(t *testing.T) {
	b := NewHeuristicTokenBudgeter()

	prev := 0
	text := ""
	for i := 0; i < 20; i++ {
		text += "some more words "
		est := b.Estimate(text)
		assert.GreaterOrEqual(t, est, prev, "appending text must never decrease the estimate")
		prev = est
	}
}

func TestTokenBudgeter_Check(t *testing.T) {
	b := NewHeuristicTokenBudgeter()

	small := "short request"
	large := strings.Repeat("word ", 5000)

	assert.True(t, b.Check(small, 100).Allowed)

	v := b.Check(large, 100)
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonTokenLimit, v.Reason)

	// zero budget falls back to the default
	assert.True(t, b.Check(small, 0).Allowed)
}

func TestTokenBudgeter_Truncate(t *testing.T) {
	b := NewHeuristicTokenBudgeter()

	text := strings.Repeat("x", 1000)
	out := b.Truncate(text, 10)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Less(t, len(out), len(text))

	// under budget is returned untouched
	assert.Equal(t, "short", b.Truncate("short", 10))
}

func TestTokenBudgeter_TruncateKeepsValidUTF8(t *testing.T) {
	b := NewHeuristicTokenBudgeter()

	// 3-byte runes guarantee the byte limit lands mid-rune.
	text := strings.Repeat("日本語", 100)
	for budget := 1; budget <= 5; budget++ {
		out := b.Truncate(text, budget)
		assert.True(t, utf8.ValidString(out), "budget %d produced invalid UTF-8", budget)
		assert.True(t, strings.HasSuffix(out, "..."))
	}
}
