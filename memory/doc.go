// Package memory contains the concrete MemoryStore implementation. The store
// interface and SearchResult type reside in the core package. Import
// github.com/hupe1980/researchmesh/core and depend on core.MemoryStore in your
// code; select an embedder (OpenAI or the deterministic local one) at wiring
// time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// embedding backends to be swapped without introducing dependency cycles.
package memory
