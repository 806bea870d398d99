package guardrail

import "fmt"

// ValidationError reports that input or output text failed a guardrail check.
// Check names the failing sub-check (e.g. "content_filter", "token_budget"),
// Reason carries the verdict reason.
type ValidationError struct {
	Check  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed [%s]: %s", e.Check, e.Reason)
}

// NewValidationError creates a ValidationError for the given sub-check.
func NewValidationError(check, reason string) *ValidationError {
	return &ValidationError{Check: check, Reason: reason}
}

// RateLimitError reports a denied rate limit check. The caller must wait for
// the window to slide before retrying; the task is aborted, not retried
// automatically.
type RateLimitError struct {
	Actor string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Actor)
}
