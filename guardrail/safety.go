package guardrail

import (
	"time"

	"github.com/hupe1980/researchmesh/audit"
)

// DefaultRateLimit is the default number of operations per actor per window.
const DefaultRateLimit = 10

// DefaultRateWindow is the default sliding rate limit window.
const DefaultRateWindow = time.Minute

// SafetyContext bundles the process-wide shared safety state: the rate
// limiter and the audit log. It is constructed once at process start and
// passed explicitly to the engine and tools instead of living behind an
// implicit singleton, so concurrent-access discipline stays visible at call
// sites. Lifetime is process start to process exit.
type SafetyContext struct {
	Limiter *RateLimiter
	Audit   *audit.Log
}

// NewSafetyContext constructs a SafetyContext. A nil limiter or log is
// replaced with a default instance.
func NewSafetyContext(limiter *RateLimiter, log *audit.Log) *SafetyContext {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit, DefaultRateWindow)
	}
	if log == nil {
		log = audit.NewLog()
	}
	return &SafetyContext{Limiter: limiter, Audit: log}
}
