package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/guardrail"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/model"
	"github.com/hupe1980/researchmesh/tool"
)

// Phase tracks where an agent is in its reasoning loop.
type Phase int

const (
	// PhaseIdle means the agent has not started running.
	PhaseIdle Phase = iota
	// PhasePlanning means the agent is waiting for the model's next step.
	PhasePlanning
	// PhaseActing means the agent is executing requested tool calls.
	PhaseActing
	// PhaseObserving means the agent is feeding tool results back to the model.
	PhaseObserving
	// PhaseDone means the agent produced a validated final answer.
	PhaseDone
	// PhaseFailed means the run ended without a valid answer.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlanning:
		return "planning"
	case PhaseActing:
		return "acting"
	case PhaseObserving:
		return "observing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ReasonIterationLimit marks a run that exhausted its iteration budget
// without producing a valid final answer.
const ReasonIterationLimit = "iteration_limit_exceeded"

// Error reports a failed agent run.
type Error struct {
	Agent  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent %s failed (%s): %v", e.Agent, e.Reason, e.Err)
	}
	return fmt.Sprintf("agent %s failed: %s", e.Agent, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultToolTimeout bounds a single tool invocation.
const DefaultToolTimeout = 30 * time.Second

// Options configures an Agent.
type Options struct {
	// Validator checks final answers before they are accepted. Defaults to
	// guardrail.NewOutputValidator().
	Validator *guardrail.OutputValidator
	// Logger receives loop progress. Defaults to NoOpLogger.
	Logger logging.Logger
	// ToolTimeout bounds each tool call. Defaults to DefaultToolTimeout.
	ToolTimeout time.Duration
}

// Agent runs a role's reasoning loop against a model and a set of
// registered tools.
type Agent struct {
	role      Role
	llm       model.Model
	tools     map[string]tool.Tool
	validator *guardrail.OutputValidator
	logger    logging.Logger
	timeout   time.Duration

	phase Phase
}

// New creates an agent for the given role and model.
func New(role Role, llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Validator:   guardrail.NewOutputValidator(),
		Logger:      logging.NoOpLogger{},
		ToolTimeout: DefaultToolTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Agent{
		role:      role,
		llm:       llm,
		tools:     make(map[string]tool.Tool),
		validator: opts.Validator,
		logger:    opts.Logger,
		timeout:   opts.ToolTimeout,
		phase:     PhaseIdle,
	}
}

// Role returns the agent's role.
func (a *Agent) Role() Role { return a.role }

// Phase returns the loop phase the agent last reached.
func (a *Agent) Phase() Phase { return a.phase }

// RegisterTool makes a tool available for dispatch. Registering a tool the
// role does not list is allowed but calls to it will be rejected.
func (a *Agent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools registers multiple tools.
func (a *Agent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// Run executes the reasoning loop for a task and returns the validated
// report. Tool failures and rate limit denials are fed back to the model
// as observations; each model round trip consumes one iteration.
func (a *Agent) Run(ctx context.Context, topic, task string) (*core.Report, error) {
	messages := []model.Message{{Role: "user", Content: task}}

	for iteration := 0; iteration < a.role.MaxIterations; iteration++ {
		a.phase = PhasePlanning
		a.logger.Debug("agent iteration", "agent", a.role.Name, "iteration", iteration, "phase", a.phase.String())

		start := time.Now()
		resp, err := a.llm.Generate(ctx, model.Request{
			Instructions: a.role.Instruction,
			Messages:     messages,
			Tools:        a.toolDefinitions(),
		})
		tokens := 0
		if resp != nil && resp.Usage != nil {
			tokens = resp.Usage.TotalTokens
		}
		logging.LogModelCall(a.logger, a.llm.Info().Name, tokens, time.Since(start), err)
		if err != nil {
			a.phase = PhaseFailed
			return nil, &Error{Agent: a.role.Name, Reason: "model_error", Err: err}
		}

		if len(resp.ToolCalls) > 0 {
			a.phase = PhaseActing
			messages = append(messages, model.Message{
				Role:      "assistant",
				Content:   resp.Text,
				ToolCalls: resp.ToolCalls,
			})
			for _, call := range resp.ToolCalls {
				result, err := a.dispatch(ctx, call)
				if err != nil {
					a.phase = PhaseFailed
					return nil, err
				}
				messages = append(messages, model.Message{
					Role:       "tool",
					Content:    result,
					ToolCallID: call.ID,
				})
			}
			a.phase = PhaseObserving
			continue
		}

		verdict := a.validator.Check(a.role.Kind, resp.Text)
		if !verdict.Allowed {
			logging.LogGuardrailDenial(a.logger, "output_validation", a.role.Name, verdict.Reason)
			messages = append(messages,
				model.Message{Role: "assistant", Content: resp.Text},
				model.Message{Role: "user", Content: validationFeedback(verdict.Reason)},
			)
			continue
		}

		a.phase = PhaseDone
		return &core.Report{
			Kind:      a.role.Kind,
			Topic:     topic,
			Timestamp: time.Now(),
			Body:      resp.Text,
		}, nil
	}

	a.phase = PhaseFailed
	return nil, &Error{Agent: a.role.Name, Reason: ReasonIterationLimit}
}

// dispatch runs a single tool call. Recoverable failures (validation
// errors, rate limits, execution errors) come back as observation text for
// the model; only unknown calls with no handler abort the run.
func (a *Agent) dispatch(ctx context.Context, call model.ToolCall) (string, error) {
	if !a.role.Allowed(call.Name) {
		logging.LogGuardrailDenial(a.logger, "tool_permission", a.role.Name, call.Name)
		return fmt.Sprintf("Error: tool %q is not permitted for this role.", call.Name), nil
	}

	t, ok := a.tools[call.Name]
	if !ok {
		return "", &Error{Agent: a.role.Name, Reason: "unknown_tool", Err: fmt.Errorf("tool %q is not registered", call.Name)}
	}

	args := map[string]interface{}{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fmt.Sprintf("Error: invalid tool arguments: %v", err), nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	result, err := t.Call(callCtx, args)
	logging.LogToolCall(a.logger, call.Name, time.Since(start), err)
	if err != nil {
		var toolErr *tool.ToolError
		var rateErr *guardrail.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			return fmt.Sprintf("Error: %v. Wait before retrying this tool.", rateErr), nil
		case errors.As(err, &toolErr):
			return fmt.Sprintf("Error: %v", toolErr), nil
		default:
			return fmt.Sprintf("Error: %v", err), nil
		}
	}
	return result, nil
}

// toolDefinitions exposes only the role's permitted, registered tools to
// the model.
func (a *Agent) toolDefinitions() []model.ToolDefinition {
	var defs []model.ToolDefinition
	for _, name := range a.role.Tools {
		t, ok := a.tools[name]
		if !ok {
			continue
		}
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

func validationFeedback(reason string) string {
	switch reason {
	case guardrail.ReasonOutputTooShort:
		return "Your answer is too short. Expand it with the details you gathered."
	case guardrail.ReasonMissingCitations:
		return "Your answer is missing citations. Include the source URLs you used."
	case guardrail.ReasonLowConfidence:
		return "Your answer lacks depth. Add more detail and cite your sources."
	default:
		return fmt.Sprintf("Your answer was rejected (%s). Revise it and try again.", reason)
	}
}
