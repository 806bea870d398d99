package guardrail

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hupe1980/researchmesh/core"
)

// ReasonTokenLimit is the verdict reason emitted when a text exceeds its token budget.
const ReasonTokenLimit = "token_limit_exceeded"

// DefaultMaxTokens is the default per-request token budget.
const DefaultMaxTokens = 4000

// TokenBudgeter estimates token counts with the cl100k_base encoding and
// rejects over-budget texts. When the encoding cannot be loaded (offline
// environments) it falls back to a deterministic bytes/4 heuristic. Both
// estimators are monotonic: appending text never decreases the estimate.
type TokenBudgeter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenBudgeter constructs a budgeter, loading the cl100k_base encoding if
// available.
func NewTokenBudgeter() *TokenBudgeter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &TokenBudgeter{}
	}
	return &TokenBudgeter{enc: enc}
}

// NewHeuristicTokenBudgeter constructs a budgeter that always uses the bytes/4
// heuristic. Intended for tests and environments without encoding data.
func NewHeuristicTokenBudgeter() *TokenBudgeter {
	return &TokenBudgeter{}
}

// Estimate returns the token count of the text.
func (b *TokenBudgeter) Estimate(text string) int {
	if b.enc != nil {
		return len(b.enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// Check denies when the estimate exceeds maxTokens. A maxTokens <= 0 applies
// DefaultMaxTokens.
func (b *TokenBudgeter) Check(text string, maxTokens int) core.Verdict {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if b.Estimate(text) > maxTokens {
		return core.Deny(ReasonTokenLimit)
	}
	return core.Allow()
}

// Truncate shortens text to at most maxTokens tokens, appending an ellipsis
// when content was dropped.
func (b *TokenBudgeter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if b.enc != nil {
		tokens := b.enc.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text
		}
		return b.enc.Decode(tokens[:maxTokens]) + "..."
	}
	limit := maxTokens * 4
	if len(text) <= limit {
		return text
	}
	// Back off to a rune boundary so the cut never yields invalid UTF-8.
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + "..."
}
