// Package engine orchestrates the research-and-summarize pipeline: it
// validates the topic, rate limits the session, runs the research agent,
// persists findings into vector memory, retrieves context for the summary
// agent, validates both artifacts and saves them as report files. Every
// step is recorded in the audit log, including failures.
package engine
