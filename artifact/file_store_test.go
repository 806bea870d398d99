package artifact

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/core"
)

func sampleReport(kind core.ReportKind, topic string) core.Report {
	return core.Report{
		Kind:      kind,
		Topic:     topic,
		Timestamp: time.Now(),
		Body:      "findings about " + topic,
	}
}

func TestFileStore_SaveLoadList(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("20260115_103000", sampleReport(core.ReportResearch, "Quantum Computing Advances!"))
	require.NoError(t, err)
	assert.Equal(t, "research_20260115_103000_quantum_computing_advances.txt", name)

	body, err := store.Load(name)
	require.NoError(t, err)
	assert.Equal(t, "findings about Quantum Computing Advances!", body)

	_, err = store.Save("20260115_103000", sampleReport(core.ReportSummary, "Quantum Computing Advances!"))
	require.NoError(t, err)

	names, err := store.List()
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.True(t, strings.HasPrefix(names[0], "research_"))
	assert.True(t, strings.HasPrefix(names[1], "summary_"))
}

func TestFileStore_LoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("research_x_y.txt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStore_RejectsEscapingNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("../../../etc/passwd")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_SaveLoadList(t *testing.T) {
	store := NewInMemoryStore()

	name, err := store.Save("s1", sampleReport(core.ReportResearch, "topic"))
	require.NoError(t, err)

	body, err := store.Load(name)
	require.NoError(t, err)
	assert.Contains(t, body, "topic")

	_, err = store.Load("missing.txt")
	assert.True(t, errors.Is(err, ErrNotFound))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"AI agents and multi-agent systems", "ai_agents_and_multi_agent_syst"},
		{"Hello, World!", "hello_world"},
		{"   spaces   everywhere   ", "spaces_everywhere"},
		{"???", "untitled"},
		{"", "untitled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.topic), "topic %q", tt.topic)
		assert.LessOrEqual(t, len(Slug(tt.topic)), MaxSlugLength)
	}
}
