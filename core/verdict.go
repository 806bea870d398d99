package core

// Verdict is the outcome of a guardrail check. A Verdict is produced fresh per
// check call and never persisted; Reason is set only when the check denied.
type Verdict struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing verdict.
func Allow() Verdict { return Verdict{Allowed: true} }

// Deny returns a denying verdict with the given reason.
func Deny(reason string) Verdict { return Verdict{Allowed: false, Reason: reason} }
