// Package watch holds the set of service names whose status is reported on
// every usage tick. The list outlives individual connections.
package watch

import "sync"

// List is a concurrency-safe watch list. The zero value is an empty list.
type List struct {
	mu    sync.RWMutex
	names []string
}

// New creates an empty watch list.
func New() *List {
	return &List{}
}

// Replace swaps the whole list. Empty names and duplicates are dropped; the
// order of first appearance is kept. The input slice is not retained.
func (l *List) Replace(names []string) {
	next := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		next = append(next, name)
	}

	l.mu.Lock()
	l.names = next
	l.mu.Unlock()
}

// Snapshot returns a copy of the current list.
func (l *List) Snapshot() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Len returns the number of watched services.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names)
}
