package core

import "time"

// ReportKind categorizes a report artifact.
type ReportKind string

const (
	// ReportResearch marks the findings artifact produced by the research agent.
	ReportResearch ReportKind = "research"
	// ReportSummary marks the executive summary artifact produced by the summary agent.
	ReportSummary ReportKind = "summary"
)

// Report is an immutable artifact produced by a completed agent run. It is
// written once and never mutated afterwards.
type Report struct {
	Kind      ReportKind
	Topic     string
	Timestamp time.Time
	Body      string
}

// ReportStore defines the interface for report artifact persistence.
// Implementations should be thread-safe and scope artifacts by session
// identifier. Save returns the name the artifact was stored under.
type ReportStore interface {
	Save(sessionID string, report Report) (string, error)
	Load(name string) (string, error)
	List() ([]string, error)
}
