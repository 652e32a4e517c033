package store

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"flowcanvas/internal/domain"
)

// Allocator issues per-kind sequential node identifiers of the form
// "{kind}-{n}". Counters start at zero and are pre-incremented, so the
// first llm node is "llm-1". A value is never issued twice.
type Allocator struct {
	mu       sync.Mutex
	counters map[domain.NodeKind]int
}

// NewAllocator creates an allocator with every counter at zero
func NewAllocator() *Allocator {
	return &Allocator{counters: make(map[domain.NodeKind]int)}
}

// Next returns the next identifier for kind
func (a *Allocator) Next(kind domain.NodeKind) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counters[kind]++
	return fmt.Sprintf("%s-%d", kind, a.counters[kind])
}

// Observe advances the counter for kind past id when id follows the
// "{kind}-{n}" form. Nodes that enter the store without going through Next
// (imports, explicit AddNode calls) are observed so later allocations never
// collide with them.
func (a *Allocator) Observe(kind domain.NodeKind, id string) {
	rest, ok := strings.CutPrefix(id, string(kind)+"-")
	if !ok {
		return
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.counters[kind] {
		a.counters[kind] = n
	}
}

// Peek returns the last value issued for kind, zero if none
func (a *Allocator) Peek(kind domain.NodeKind) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters[kind]
}
