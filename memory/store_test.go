package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/researchmesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.MemoryStore = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), "agent_memory", NewLocalEmbedder(0))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_UpsertThenQueryTopHit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	target := "quantum computing breakthroughs in error correction"
	if _, err := store.Upsert(ctx, "completely unrelated gardening advice for tomatoes", nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := store.Upsert(ctx, target, map[string]any{"agent_role": "research"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	results, err := store.Query(ctx, target, 1)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Content != target {
		t.Fatalf("expected top hit %q, got %q", target, results[0].Content)
	}
	if results[0].Score < 0 || results[0].Score > 1 {
		t.Fatalf("score out of [0,1]: %f", results[0].Score)
	}

	// identical text must outrank unrelated text
	all, _ := store.Query(ctx, target, 2)
	if len(all) != 2 || all[0].Score < all[1].Score {
		t.Fatalf("expected descending scores, got %#v", all)
	}
}

func TestStore_EmptyQueryReturnsEmptyNotError(t *testing.T) {
	store := newTestStore(t)

	results, err := store.Query(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
}

func TestStore_DuplicateUpsertsCreateDistinctRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.Upsert(ctx, "same text", nil)
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	id2, err := store.Upsert(ctx, "same text", nil)
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %q twice", id1)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", store.Len())
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	embedder := NewLocalEmbedder(0)
	ctx := context.Background()

	store, err := Open(dir, "agent_memory", embedder)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := store.Upsert(ctx, "persistent finding", map[string]any{"source_url": "https://example.org"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := Open(dir, "agent_memory", embedder)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	results, err := reopened.Query(ctx, "persistent finding", 1)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(results) != 1 || results[0].Content != "persistent finding" {
		t.Fatalf("expected persisted record, got %#v", results)
	}
	if results[0].Metadata["source_url"] != "https://example.org" {
		t.Fatalf("expected metadata to survive restart, got %#v", results[0].Metadata)
	}
	if _, ok := results[0].Metadata["timestamp"]; !ok {
		t.Fatalf("expected timestamp metadata, got %#v", results[0].Metadata)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("backend unavailable")
}

func TestStore_EmbedderFailureIsStorageError(t *testing.T) {
	store, err := Open(t.TempDir(), "agent_memory", failingEmbedder{})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	_, err = store.Upsert(context.Background(), "text", nil)
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestLocalEmbedder_Deterministic(t *testing.T) {
	e := NewLocalEmbedder(0)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "the same input text")
	b, _ := e.Embed(ctx, "the same input text")
	if cosine(a, b) < 0.9999 {
		t.Fatalf("same text must produce the same vector, cosine=%f", cosine(a, b))
	}

	c, _ := e.Embed(ctx, "entirely different subject matter")
	if cosine(a, c) >= cosine(a, b) {
		t.Fatalf("unrelated text must not outrank identical text")
	}
}
