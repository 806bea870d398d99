// Package core provides the foundational domain types and interfaces used by
// researchmesh. It defines the core abstractions for:
//
//   - Guardrail verdicts (allow/deny decisions produced before side effects)
//   - Semantic memory persistence and retrieval (MemoryStore, SearchResult)
//   - Report artifacts produced by agent runs (Report, ReportStore)
//
// The package intentionally keeps implementation concerns (vector backends,
// filesystem persistence, concrete agents) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
