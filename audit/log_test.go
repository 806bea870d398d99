package audit

import (
	"fmt"
	"sync"
	"testing"
)

func TestLog_AppendAndSnapshot(t *testing.T) {
	l := NewLog()
	l.Append("validate_input", "orchestrator", "allowed", "")
	l.Append("research", "research_agent", "failed", "iteration_limit_exceeded")

	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != "validate_input" || entries[0].Outcome != "allowed" {
		t.Fatalf("unexpected first entry: %#v", entries[0])
	}
	if entries[1].Detail != "iteration_limit_exceeded" {
		t.Fatalf("unexpected detail: %q", entries[1].Detail)
	}

	// snapshot isolation
	entries[0].Operation = "mutated"
	if l.Entries()[0].Operation != "validate_input" {
		t.Fatalf("expected snapshot copy, internal state mutated")
	}
}

func TestLog_ConcurrentAppend(t *testing.T) {
	l := NewLog()
	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append("op", fmt.Sprintf("actor-%d", i%5), "ok", "")
		}(i)
	}
	wg.Wait()
	if l.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", l.Len())
	}
}
