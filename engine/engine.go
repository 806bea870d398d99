package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/agent"
	"github.com/hupe1980/researchmesh/audit"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/guardrail"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/memory"
)

// DefaultContextK is the number of memory snippets retrieved as context for
// the summary agent.
const DefaultContextK = 5

// sessionIDLayout formats session identifiers from wall-clock time.
const sessionIDLayout = "20060102_150405"

// DefaultFocusAreas guide research when the caller supplies none.
var DefaultFocusAreas = []string{"general overview", "recent developments", "key statistics"}

// Result holds the artifacts of a completed pipeline run.
type Result struct {
	SessionID    string
	Research     *core.Report
	Summary      *core.Report
	ResearchFile string
	SummaryFile  string
}

// Options configures an Engine.
type Options struct {
	// Safety bundles the rate limiter and audit log shared across the
	// process. Defaults to a fresh NewSafetyContext(nil, nil).
	Safety *guardrail.SafetyContext
	// Input validates topics before any work starts.
	Input *guardrail.InputValidator
	// Output re-validates both artifacts before they are persisted.
	Output *guardrail.OutputValidator
	// Logger receives pipeline progress. Defaults to NoOpLogger.
	Logger logging.Logger
	// ContextK is the retrieval depth for summary context.
	ContextK int
}

// Engine coordinates the two agents, the vector memory and the report store.
type Engine struct {
	research *agent.Agent
	summary  *agent.Agent
	memory   core.MemoryStore
	reports  core.ReportStore

	safety   *guardrail.SafetyContext
	input    *guardrail.InputValidator
	output   *guardrail.OutputValidator
	logger   logging.Logger
	contextK int

	now func() time.Time
}

// New creates an engine from its collaborators.
func New(research, summary *agent.Agent, mem core.MemoryStore, reports core.ReportStore, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		ContextK: DefaultContextK,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Safety == nil {
		opts.Safety = guardrail.NewSafetyContext(nil, nil)
	}
	if opts.Input == nil {
		opts.Input = guardrail.NewInputValidator()
	}
	if opts.Output == nil {
		opts.Output = guardrail.NewOutputValidator()
	}

	return &Engine{
		research: research,
		summary:  summary,
		memory:   mem,
		reports:  reports,
		safety:   opts.Safety,
		input:    opts.Input,
		output:   opts.Output,
		logger:   opts.Logger,
		contextK: opts.ContextK,
		now:      time.Now,
	}
}

// Audit exposes the engine's audit log for inspection.
func (e *Engine) Audit() *audit.Log { return e.safety.Audit }

// Run executes the full research-and-summarize pipeline for a topic.
// The first guardrail or agent failure aborts the run; memory backend
// failures during retrieval degrade to an empty context instead.
func (e *Engine) Run(ctx context.Context, topic string, focusAreas ...string) (*Result, error) {
	log := e.safety.Audit
	sessionID := e.now().Format(sessionIDLayout)

	topic = e.input.Sanitize(topic)
	if verdict := e.input.Check(topic); !verdict.Allowed {
		log.Append("validate_input", "orchestrator", "denied", verdict.Reason)
		logging.LogGuardrailDenial(e.logger, "input_validation", "orchestrator", verdict.Reason)
		return nil, guardrail.NewValidationError("input_validation", verdict.Reason)
	}
	log.Append("validate_input", "orchestrator", "allowed", topic)

	if verdict := e.safety.Limiter.Allow("orchestrator"); !verdict.Allowed {
		log.Append("rate_limit", "orchestrator", "denied", verdict.Reason)
		logging.LogGuardrailDenial(e.logger, "rate_limit", "orchestrator", verdict.Reason)
		return nil, &guardrail.RateLimitError{Actor: "orchestrator"}
	}
	log.Append("rate_limit", "orchestrator", "allowed", "")

	log.Append("research_and_summarize", "orchestrator", "started", fmt.Sprintf("topic=%s session=%s", topic, sessionID))
	e.logger.Info("pipeline started", "topic", topic, "session_id", sessionID)

	research, err := e.research.Run(ctx, topic, researchTask(topic, focusAreas))
	if err != nil {
		log.Append("research_agent", "research_agent", "failed", err.Error())
		log.Append("research_and_summarize", "orchestrator", "failed", err.Error())
		return nil, err
	}
	log.Append("research_agent", "research_agent", "completed", "")

	e.remember(ctx, log, fmt.Sprintf("Research on %s: %s", topic, truncate(research.Body, 500)),
		map[string]interface{}{"type": "research", "topic": topic, "session_id": sessionID, "agent_role": e.research.Role().Name})

	snippets, err := e.memory.Query(ctx, topic, e.contextK)
	if err != nil {
		var storageErr *memory.StorageError
		if !errors.As(err, &storageErr) {
			log.Append("memory_query", "orchestrator", "failed", err.Error())
			return nil, err
		}
		// Backend loss degrades retrieval to empty context rather than
		// aborting the task.
		log.Append("memory_query", "orchestrator", "degraded", err.Error())
		e.logger.Warn("memory retrieval degraded", "error", err)
		snippets = nil
	} else {
		log.Append("memory_query", "orchestrator", "completed", fmt.Sprintf("results=%d", len(snippets)))
	}

	summary, err := e.summary.Run(ctx, topic, summaryTask(topic, research.Body, snippets))
	if err != nil {
		log.Append("summary_agent", "summary_agent", "failed", err.Error())
		log.Append("research_and_summarize", "orchestrator", "failed", err.Error())
		return nil, err
	}
	log.Append("summary_agent", "summary_agent", "completed", "")

	for _, report := range []*core.Report{research, summary} {
		if verdict := e.output.Check(report.Kind, report.Body); !verdict.Allowed {
			log.Append("validate_output", "orchestrator", "denied", verdict.Reason)
			log.Append("research_and_summarize", "orchestrator", "failed", verdict.Reason)
			return nil, guardrail.NewValidationError("output_validation", verdict.Reason)
		}
	}
	log.Append("validate_output", "orchestrator", "allowed", "")

	e.remember(ctx, log, fmt.Sprintf("Summary of %s: %s", topic, truncate(summary.Body, 500)),
		map[string]interface{}{"type": "summary", "topic": topic, "session_id": sessionID, "agent_role": e.summary.Role().Name})

	researchFile, err := e.reports.Save(sessionID, *research)
	if err != nil {
		log.Append("save_reports", "orchestrator", "failed", err.Error())
		return nil, fmt.Errorf("failed to persist research report: %w", err)
	}
	summaryFile, err := e.reports.Save(sessionID, *summary)
	if err != nil {
		log.Append("save_reports", "orchestrator", "failed", err.Error())
		return nil, fmt.Errorf("failed to persist summary report: %w", err)
	}
	log.Append("save_reports", "orchestrator", "completed", fmt.Sprintf("%s %s", researchFile, summaryFile))

	log.Append("research_and_summarize", "orchestrator", "completed", fmt.Sprintf("topic=%s session=%s", topic, sessionID))
	e.logger.Info("pipeline completed", "topic", topic, "session_id", sessionID)

	return &Result{
		SessionID:    sessionID,
		Research:     research,
		Summary:      summary,
		ResearchFile: researchFile,
		SummaryFile:  summaryFile,
	}, nil
}

// History retrieves previous sessions from memory, most relevant first.
func (e *Engine) History(ctx context.Context, topic string) ([]core.SearchResult, error) {
	query := "research"
	if topic != "" {
		query = "research on " + topic
	}
	return e.memory.Query(ctx, query, 10)
}

// remember stores pipeline-level context in memory. Upsert failures are
// logged as degraded operation, not surfaced; the agents' own memories may
// already cover the findings.
func (e *Engine) remember(ctx context.Context, log *audit.Log, content string, metadata map[string]interface{}) {
	if _, err := e.memory.Upsert(ctx, content, metadata); err != nil {
		log.Append("memory_upsert", "orchestrator", "degraded", err.Error())
		e.logger.Warn("memory upsert degraded", "error", err)
		return
	}
	log.Append("memory_upsert", "orchestrator", "completed", "")
}

func researchTask(topic string, focusAreas []string) string {
	if len(focusAreas) == 0 {
		focusAreas = DefaultFocusAreas
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Research the following topic: %s\n\n", topic)
	fmt.Fprintf(&b, "Focus Areas: %s\n\n", strings.Join(focusAreas, ", "))
	b.WriteString("Your research should:\n" +
		"1. Search for current, credible information from multiple sources\n" +
		"2. Gather key facts, statistics, and insights\n" +
		"3. Verify information accuracy by cross-referencing sources\n" +
		"4. Document all sources with URLs\n" +
		"5. Store important findings in memory for future reference\n\n" +
		"Produce a comprehensive research report with key findings, detailed " +
		"analysis and a list of sources.")
	return b.String()
}

func summaryTask(topic, researchBody string, snippets []core.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create an executive summary from the research findings on: %s\n\n", topic)
	if len(snippets) > 0 {
		b.WriteString("Relevant context from memory:\n")
		for _, s := range snippets {
			fmt.Fprintf(&b, "- %s\n", s.Content)
		}
		b.WriteString("\n")
	}
	b.WriteString("Research findings:\n")
	b.WriteString(researchBody)
	b.WriteString("\n\nYour summary should synthesize the research into a compelling " +
		"narrative, highlight the most critical insights, identify strategic " +
		"implications and provide actionable recommendations.")
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
