package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/guardrail"
	"github.com/hupe1980/researchmesh/model"
	"github.com/hupe1980/researchmesh/tool"
)

// scriptedTool returns canned results keyed by call count and records the
// arguments it was called with.
type scriptedTool struct {
	name    string
	results []string
	errs    []error
	calls   []map[string]interface{}
}

func (t *scriptedTool) Name() string        { return t.name }
func (t *scriptedTool) Description() string { return "scripted test tool" }

func (t *scriptedTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}

func (t *scriptedTool) Call(_ context.Context, args map[string]interface{}) (string, error) {
	i := len(t.calls)
	t.calls = append(t.calls, args)
	var err error
	if i < len(t.errs) {
		err = t.errs[i]
	}
	result := ""
	if i < len(t.results) {
		result = t.results[i]
	}
	return result, err
}

// validResearchBody passes the research output validator: long enough and
// carrying citation URLs.
func validResearchBody() string {
	return strings.Repeat("Quantum error correction is advancing rapidly. ", 40) +
		"Sources: https://example.com/qec https://example.org/quantum"
}

func toolCallResponse(calls ...model.ToolCall) *model.Response {
	return &model.Response{ToolCalls: calls, FinishReason: "tool_calls"}
}

func textResponse(text string) *model.Response {
	return &model.Response{Text: text, FinishReason: "stop"}
}

func newTestAgent(role Role, llm model.Model) *Agent {
	return New(role, llm, func(o *Options) {
		o.Validator = guardrail.NewOutputValidator(func(vo *guardrail.OutputValidatorOptions) {
			vo.Input = newHeuristicInputValidator()
		})
	})
}

func newHeuristicInputValidator() *guardrail.InputValidator {
	return guardrail.NewInputValidator(func(o *guardrail.InputValidatorOptions) {
		o.Budgeter = guardrail.NewHeuristicTokenBudgeter()
	})
}

func TestAgent_RunsToolLoopToCompletion(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(toolCallResponse(model.ToolCall{
		ID:        "call_1",
		Name:      "search_web",
		Arguments: `{"query":"quantum computing"}`,
	}))
	llm.Enqueue(textResponse(validResearchBody()))

	search := &scriptedTool{name: "search_web", results: []string{`[{"title":"QC"}]`}}
	a := newTestAgent(ResearchRole(), llm)
	a.RegisterTool(search)

	report, err := a.Run(context.Background(), "quantum computing", "Research quantum computing")
	require.NoError(t, err)

	assert.Equal(t, core.ReportResearch, report.Kind)
	assert.Equal(t, "quantum computing", report.Topic)
	assert.Contains(t, report.Body, "https://example.com/qec")
	assert.Equal(t, PhaseDone, a.Phase())

	require.Len(t, search.calls, 1)
	assert.Equal(t, "quantum computing", search.calls[0]["query"])
}

func TestAgent_IterationLimitExceeded(t *testing.T) {
	role := ResearchRole()
	role.MaxIterations = 3

	llm := model.NewMockModel("mock", "test")
	search := &scriptedTool{name: "search_web", results: []string{"r", "r", "r"}}
	for i := 0; i < role.MaxIterations; i++ {
		llm.Enqueue(toolCallResponse(model.ToolCall{
			ID:        fmt.Sprintf("call_%d", i),
			Name:      "search_web",
			Arguments: `{"query":"more"}`,
		}))
	}

	a := newTestAgent(role, llm)
	a.RegisterTool(search)

	_, err := a.Run(context.Background(), "topic", "Research topic")
	require.Error(t, err)

	var agentErr *Error
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, ReasonIterationLimit, agentErr.Reason)
	assert.Equal(t, PhaseFailed, a.Phase())
}

func TestAgent_ToolErrorIsRecoverableObservation(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(toolCallResponse(model.ToolCall{
		ID:        "call_1",
		Name:      "search_web",
		Arguments: `{"query":"q"}`,
	}))
	llm.Enqueue(textResponse(validResearchBody()))

	search := &scriptedTool{
		name: "search_web",
		errs: []error{tool.NewToolError("search_web", "upstream unavailable", tool.CodeExecution)},
	}
	a := newTestAgent(ResearchRole(), llm)
	a.RegisterTool(search)

	report, err := a.Run(context.Background(), "topic", "Research topic")
	require.NoError(t, err, "a failing tool should not abort the run")
	assert.NotNil(t, report)
}

func TestAgent_RateLimitIsRecoverableObservation(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(toolCallResponse(model.ToolCall{
		ID:        "call_1",
		Name:      "search_web",
		Arguments: `{"query":"q"}`,
	}))
	llm.Enqueue(textResponse(validResearchBody()))

	search := &scriptedTool{
		name: "search_web",
		errs: []error{&guardrail.RateLimitError{Actor: "search_web"}},
	}
	a := newTestAgent(ResearchRole(), llm)
	a.RegisterTool(search)

	_, err := a.Run(context.Background(), "topic", "Research topic")
	require.NoError(t, err)
}

func TestAgent_RejectsToolOutsideRole(t *testing.T) {
	role := SummaryRole() // has no search_web permission

	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(toolCallResponse(model.ToolCall{
		ID:        "call_1",
		Name:      "search_web",
		Arguments: `{"query":"q"}`,
	}))
	llm.Enqueue(textResponse(strings.Repeat("An executive summary of the findings. ", 10)))

	search := &scriptedTool{name: "search_web"}
	a := newTestAgent(role, llm)
	a.RegisterTool(search)

	report, err := a.Run(context.Background(), "topic", "Summarize the findings")
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Empty(t, search.calls, "unpermitted tool must never execute")
}

func TestAgent_RetriesAfterFailedValidation(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(textResponse("too short")) // fails output validation
	llm.Enqueue(textResponse(validResearchBody()))

	a := newTestAgent(ResearchRole(), llm)

	report, err := a.Run(context.Background(), "topic", "Research topic")
	require.NoError(t, err)
	assert.Contains(t, report.Body, "https://example.com/qec")
}

func TestAgent_SummaryWithoutCitationsPasses(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(textResponse(strings.Repeat("Key findings and recommendations for leadership. ", 5)))

	a := newTestAgent(SummaryRole(), llm)

	report, err := a.Run(context.Background(), "topic", "Summarize")
	require.NoError(t, err)
	assert.Equal(t, core.ReportSummary, report.Kind)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "done", PhaseDone.String())
	assert.Equal(t, "failed", PhaseFailed.String())
}
