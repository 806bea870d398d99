package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/guardrail"
)

// MemoryWriteOptions configures a MemoryWriteTool.
type MemoryWriteOptions struct {
	// AgentRole is stamped into the metadata of every stored record so
	// retrieval can attribute entries to the agent that wrote them.
	AgentRole string
}

// MemoryWriteTool stores content in the agent's long-term vector memory.
// Content is screened by the content filter before it is persisted so
// filtered material never enters the store.
type MemoryWriteTool struct {
	store  core.MemoryStore
	filter *guardrail.ContentFilter
	role   string
}

var _ Tool = (*MemoryWriteTool)(nil)

// NewMemoryWriteTool creates a store_memory tool.
func NewMemoryWriteTool(store core.MemoryStore, filter *guardrail.ContentFilter, optFns ...func(o *MemoryWriteOptions)) *MemoryWriteTool {
	opts := MemoryWriteOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if filter == nil {
		filter = guardrail.NewContentFilter()
	}
	return &MemoryWriteTool{store: store, filter: filter, role: opts.AgentRole}
}

// Name implements Tool.
func (t *MemoryWriteTool) Name() string { return "store_memory" }

// Description implements Tool.
func (t *MemoryWriteTool) Description() string {
	return "Store important information in long-term memory for future reference."
}

// Parameters implements Tool.
func (t *MemoryWriteTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The information to remember",
			},
			"category": map[string]interface{}{
				"type":        "string",
				"description": "Optional category label, defaults to general",
			},
			"source_url": map[string]interface{}{
				"type":        "string",
				"description": "Optional URL of the source the information came from",
			},
		},
		"required": []string{"content"},
	}
}

// Call implements Tool.
func (t *MemoryWriteTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	content, err := stringArg(t.Name(), args, "content")
	if err != nil {
		return "", err
	}
	category := "general"
	if raw, ok := args["category"].(string); ok && raw != "" {
		category = raw
	}

	if verdict := t.filter.Check(content); !verdict.Allowed {
		return "", NewToolError(t.Name(), fmt.Sprintf("content rejected: %s", verdict.Reason), CodeValidation)
	}

	metadata := map[string]interface{}{"category": category}
	if t.role != "" {
		metadata["agent_role"] = t.role
	}
	if sourceURL, ok := args["source_url"].(string); ok && sourceURL != "" {
		metadata["source_url"] = sourceURL
	}

	id, err := t.store.Upsert(ctx, content, metadata)
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	return fmt.Sprintf("Stored in memory with ID: %s", id), nil
}

// MemoryReadTool retrieves relevant entries from long-term memory.
type MemoryReadTool struct {
	store core.MemoryStore
	k     int
}

var _ Tool = (*MemoryReadTool)(nil)

// NewMemoryReadTool creates a retrieve_memory tool returning up to k results.
func NewMemoryReadTool(store core.MemoryStore, k int) *MemoryReadTool {
	if k <= 0 {
		k = 5
	}
	return &MemoryReadTool{store: store, k: k}
}

// Name implements Tool.
func (t *MemoryReadTool) Name() string { return "retrieve_memory" }

// Description implements Tool.
func (t *MemoryReadTool) Description() string {
	return "Retrieve relevant information from long-term memory."
}

// Parameters implements Tool.
func (t *MemoryReadTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "What to look up in memory",
			},
		},
		"required": []string{"query"},
	}
}

// Call implements Tool. The result is a JSON encoded []core.SearchResult.
func (t *MemoryReadTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	query, err := stringArg(t.Name(), args, "query")
	if err != nil {
		return "", err
	}

	results, err := t.store.Query(ctx, query, t.k)
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	return string(encoded), nil
}
