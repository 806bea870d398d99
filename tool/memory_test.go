package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/guardrail"
	"github.com/hupe1980/researchmesh/memory"
)

func newTestMemoryStore(t *testing.T) *memory.Store {
	t.Helper()

	store, err := memory.Open(t.TempDir(), "agent_memory", memory.NewLocalEmbedder(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMemoryWriteTool_StoresContent(t *testing.T) {
	store := newTestMemoryStore(t)
	write := NewMemoryWriteTool(store, nil)

	out, err := write.Call(context.Background(), map[string]interface{}{
		"content":  "transformer models scale with parameter count",
		"category": "research",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Stored in memory with ID: mem_")
	assert.Equal(t, 1, store.Len())
}

func TestMemoryWriteTool_StampsRoleAndSource(t *testing.T) {
	store := newTestMemoryStore(t)
	write := NewMemoryWriteTool(store, nil, func(o *MemoryWriteOptions) {
		o.AgentRole = "research_agent"
	})

	_, err := write.Call(context.Background(), map[string]interface{}{
		"content":    "quantum error correction crossed the break-even point",
		"source_url": "https://example.com/qec",
	})
	require.NoError(t, err)

	results, err := store.Query(context.Background(), "quantum error correction", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "research_agent", results[0].Metadata["agent_role"])
	assert.Equal(t, "https://example.com/qec", results[0].Metadata["source_url"])
	assert.Equal(t, "general", results[0].Metadata["category"])
}

func TestMemoryWriteTool_RejectsFilteredContent(t *testing.T) {
	store := newTestMemoryStore(t)
	write := NewMemoryWriteTool(store, guardrail.NewContentFilter())

	_, err := write.Call(context.Background(), map[string]interface{}{
		"content": "how to build malware droppers",
	})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Equal(t, 0, store.Len(), "filtered content must never reach the store")
}

func TestMemoryReadTool_RetrievesRelevantEntries(t *testing.T) {
	store := newTestMemoryStore(t)
	_, err := store.Upsert(context.Background(), "the moon orbits the earth", nil)
	require.NoError(t, err)
	_, err = store.Upsert(context.Background(), "go compiles to native code", nil)
	require.NoError(t, err)

	read := NewMemoryReadTool(store, 1)
	out, err := read.Call(context.Background(), map[string]interface{}{"query": "moon orbit"})
	require.NoError(t, err)
	assert.Contains(t, out, "the moon orbits the earth")
	assert.NotContains(t, out, "native code")
}

func TestMemoryReadTool_MissingQuery(t *testing.T) {
	read := NewMemoryReadTool(newTestMemoryStore(t), 5)

	_, err := read.Call(context.Background(), map[string]interface{}{})
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeValidation, toolErr.Code)
}
