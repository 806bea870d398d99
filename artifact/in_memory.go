package artifact

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// InMemoryStore is a trivial in-process ReportStore implementation useful
// for tests and single-process prototypes. It keeps report bodies in a map
// guarded by an RWMutex and uses the same naming scheme as FileStore.
//
// This implementation is intentionally minimal; it does not enforce
// retention limits or size quotas. For production, prefer FileStore or
// another durable backend that survives process restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[string]string // name -> body
}

var _ core.ReportStore = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty in-memory report store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reports: make(map[string]string)}
}

// Save implements core.ReportStore.
func (s *InMemoryStore) Save(sessionID string, report core.Report) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.txt", report.Kind, sessionID, Slug(report.Topic))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[name] = report.Body
	return name, nil
}

// Load implements core.ReportStore.
func (s *InMemoryStore) Load(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.reports[name]
	if !ok {
		return "", ErrNotFound
	}
	return body, nil
}

// List implements core.ReportStore. Names are returned sorted.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.reports))
	for name := range s.reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
