package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/researchmesh/core"
)

// StorageError reports that the backing store or the embedding backend is
// unavailable. Callers treat it as a degraded-mode signal: retrieval returns
// empty context rather than aborting the whole task.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("memory storage error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error { return e.Err }

// record is the on-disk representation of a stored memory.
type record struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding"`
}

// Store is a persistent, append-only vector store. Records live in one JSONL
// file per collection under the persist directory; the full set is loaded at
// open and appends are written through on every Upsert, so the collection
// survives process restart.
//
// Concurrency: protected by RWMutex. Query performs a linear cosine scan,
// which is fine for the session-scale collections this store holds; swap for
// a vector database when collections grow beyond memory.
type Store struct {
	mu       sync.RWMutex
	path     string
	records  []record
	embedder Embedder
	file     *os.File
}

var _ core.MemoryStore = (*Store)(nil)

// Open loads (or creates) the collection file under dir and returns a ready
// store. The same dir/collection pair always resolves to the same file.
func Open(dir, collection string, embedder Embedder) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder must not be nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	path := filepath.Join(dir, collection+".jsonl")

	records, err := loadRecords(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	return &Store{path: path, records: records, embedder: embedder, file: file}, nil
}

func loadRecords(path string) ([]record, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("corrupt record in %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Upsert embeds the content and appends a new record. Duplicate content
// creates distinct records; ids are opaque and unique. Metadata is copied and
// stamped with an RFC3339 timestamp when the caller did not set one.
func (s *Store) Upsert(ctx context.Context, content string, metadata map[string]any) (string, error) {
	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return "", &StorageError{Op: "upsert", Err: err}
	}

	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	if _, ok := md["timestamp"]; !ok {
		md["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}

	rec := record{
		ID:        "mem_" + uuid.NewString(),
		Content:   content,
		Metadata:  md,
		Embedding: embedding,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(rec)
	if err != nil {
		return "", &StorageError{Op: "upsert", Err: err}
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return "", &StorageError{Op: "upsert", Err: err}
	}
	if err := s.file.Sync(); err != nil {
		return "", &StorageError{Op: "upsert", Err: err}
	}

	s.records = append(s.records, rec)

	return rec.ID, nil
}

// Query returns up to k records ranked by similarity to the query text.
// Scores are cosine similarity mapped to [0,1] via (1+cos)/2. An empty store
// yields an empty result, not an error.
func (s *Store) Query(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []core.SearchResult{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}

	results := make([]core.SearchResult, 0, len(s.records))
	for _, rec := range s.records {
		md := make(map[string]any, len(rec.Metadata))
		for key, v := range rec.Metadata {
			md[key] = v
		}
		results = append(results, core.SearchResult{
			ID:       rec.ID,
			Content:  rec.Content,
			Score:    (1 + cosine(queryVec, rec.Embedding)) / 2,
			Metadata: md,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Path returns the backing file path of the collection.
func (s *Store) Path() string { return s.path }

// Close releases the append handle. Further Upsert calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
