// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. Helpers cover the recurring log shapes of the pipeline:
// guardrail denials, tool calls and model calls.
//
// The default constructors produce slog based loggers (JSON or text). Tests
// and quiet deployments use NoOpLogger.
package logging
