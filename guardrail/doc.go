// Package guardrail implements the safety controls applied at every pipeline
// boundary: sliding-window rate limiting, content filtering, token budgeting
// and input/output validation. All checks produce a core.Verdict before any
// side effect occurs; a denied verdict carries the reason of the first failing
// sub-check.
//
// The shared mutable safety state (rate limiter + audit log) is bundled in
// SafetyContext, constructed once at process start and passed explicitly to
// keep concurrent-access discipline visible at call sites.
package guardrail
