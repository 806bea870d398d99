// Package researchmesh provides a high-level façade over the research
// pipeline: two cooperating agents (research and summary) sharing a
// persistent vector memory, wrapped in input/output guardrails, rate
// limiting and audit logging. Most applications interact with this package
// by:
//  1. Creating a Mesh via New() (optionally overriding default stores,
//     models and guardrails)
//  2. Running topics through Run()
//  3. Inspecting the audit trail or session history afterwards
//
// The façade delegates orchestration to engine.Engine while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments supply real model adapters, a persistent
// memory directory and a structured logger.
package researchmesh

import (
	"context"

	"github.com/hupe1980/researchmesh/agent"
	"github.com/hupe1980/researchmesh/artifact"
	"github.com/hupe1980/researchmesh/audit"
	"github.com/hupe1980/researchmesh/config"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/engine"
	"github.com/hupe1980/researchmesh/guardrail"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/memory"
	"github.com/hupe1980/researchmesh/model"
	"github.com/hupe1980/researchmesh/tool"
)

// Options configures the Mesh instance.
type Options struct {
	// Config supplies iteration budgets, safety thresholds and storage
	// locations. Defaults to config.Default().
	Config *config.Config

	// ResearchModel and SummaryModel drive the two agents. Both default to
	// mock models, which is only useful in tests; production wiring passes
	// real adapters from model/openai or model/anthropic.
	ResearchModel model.Model
	SummaryModel  model.Model

	// Embedder computes memory vectors. Defaults to the deterministic local
	// embedder; production wiring passes memory.NewOpenAIEmbedder().
	Embedder memory.Embedder

	// MemoryStore overrides the file-backed vector store entirely.
	MemoryStore core.MemoryStore
	// ReportStore overrides the file-backed report store entirely.
	ReportStore core.ReportStore

	// ExtraTools are registered with the research agent in addition to the
	// built-in search, fetch and memory tools.
	ExtraTools []tool.Tool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the engine and its services.
type Mesh struct {
	opts   Options
	engine *engine.Engine
	safety *guardrail.SafetyContext
}

// New creates a new Mesh with optional overrides. Any unset service is
// initialized from the configuration defaults.
func New(optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if opts.ResearchModel == nil {
		opts.ResearchModel = model.NewMockModel("mock-research", "test")
	}
	if opts.SummaryModel == nil {
		opts.SummaryModel = model.NewMockModel("mock-summary", "test")
	}
	if opts.Embedder == nil {
		opts.Embedder = memory.NewLocalEmbedder(0)
	}

	if opts.MemoryStore == nil {
		store, err := memory.Open(cfg.Memory.PersistPath, cfg.Memory.CollectionName, opts.Embedder)
		if err != nil {
			return nil, err
		}
		opts.MemoryStore = store
	}
	if opts.ReportStore == nil {
		store, err := artifact.NewFileStore(cfg.Output.Dir)
		if err != nil {
			return nil, err
		}
		opts.ReportStore = store
	}

	filter := guardrail.NewContentFilter(cfg.Safety.BlockedTerms...)
	budgeter := guardrail.NewTokenBudgeter()
	input := guardrail.NewInputValidator(func(o *guardrail.InputValidatorOptions) {
		o.Filter = filter
		o.Budgeter = budgeter
		o.MaxTokens = cfg.Safety.MaxTokens
	})
	output := guardrail.NewOutputValidator(func(o *guardrail.OutputValidatorOptions) {
		o.Input = input
		o.MinConfidence = cfg.Safety.MinConfidence
	})

	limiter := guardrail.NewRateLimiter(cfg.Safety.RateLimitPerMinute, guardrail.DefaultRateWindow)
	safety := guardrail.NewSafetyContext(limiter, audit.NewLog())

	fileStore, err := tool.NewFileStore(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}

	researchRole := agent.ResearchRole()
	researchRole.MaxIterations = cfg.ResearchAgent.MaxIterations
	summaryRole := agent.SummaryRole()
	summaryRole.MaxIterations = cfg.SummaryAgent.MaxIterations

	agentOpts := func(o *agent.Options) {
		o.Validator = output
		o.Logger = opts.Logger
	}

	researchAgent := agent.New(researchRole, opts.ResearchModel, agentOpts)
	researchAgent.RegisterTools(
		tool.NewWebSearchTool(limiter, func(o *tool.WebSearchOptions) {
			o.MaxResults = 8
		}),
		tool.NewFetchTool(),
		tool.NewMemoryWriteTool(opts.MemoryStore, filter, func(o *tool.MemoryWriteOptions) {
			o.AgentRole = researchRole.Name
		}),
		tool.NewMemoryReadTool(opts.MemoryStore, 5),
		tool.NewFileSaveTool(fileStore),
	)
	researchAgent.RegisterTools(opts.ExtraTools...)

	summaryAgent := agent.New(summaryRole, opts.SummaryModel, agentOpts)
	summaryAgent.RegisterTools(
		tool.NewMemoryReadTool(opts.MemoryStore, 5),
		tool.NewFileSaveTool(fileStore),
		tool.NewFileLoadTool(fileStore),
		tool.NewFileListTool(fileStore),
	)

	eng := engine.New(researchAgent, summaryAgent, opts.MemoryStore, opts.ReportStore, func(o *engine.Options) {
		o.Safety = safety
		o.Input = input
		o.Output = output
		o.Logger = opts.Logger
	})

	return &Mesh{opts: opts, engine: eng, safety: safety}, nil
}

// Run executes the research-and-summarize pipeline for a topic.
func (m *Mesh) Run(ctx context.Context, topic string, focusAreas ...string) (*engine.Result, error) {
	return m.engine.Run(ctx, topic, focusAreas...)
}

// History retrieves previous research sessions related to a topic.
func (m *Mesh) History(ctx context.Context, topic string) ([]core.SearchResult, error) {
	return m.engine.History(ctx, topic)
}

// Audit exposes the process-wide audit log.
func (m *Mesh) Audit() *audit.Log { return m.safety.Audit }
