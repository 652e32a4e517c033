package history

import (
	"flowcanvas/internal/domain"
)

// DefaultMaxEntries bounds history when no explicit size is configured
const DefaultMaxEntries = 50

// Entry summarizes one recorded snapshot
type Entry struct {
	Index       int    `json:"index"`
	Fingerprint string `json:"fingerprint"`
	NumNodes    int    `json:"num_nodes"`
	NumEdges    int    `json:"num_edges"`
}

// Manager holds the snapshot sequence and the cursor into it
type Manager struct {
	entries []domain.Graph
	cursor  int
	max     int
}

// NewManager creates a history bounded to max entries. A non-positive max
// falls back to DefaultMaxEntries. The history starts with a single empty
// graph entry.
func NewManager(max int) *Manager {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	m := &Manager{max: max}
	m.Reset(*domain.NewGraph())
	return m
}

// Reset discards all entries and seeds history with g at cursor 0.
func (m *Manager) Reset(g domain.Graph) {
	m.entries = []domain.Graph{g.Clone()}
	m.cursor = 0
}

// Checkpoint records g as the newest entry. Entries after the cursor are
// dropped first, and the oldest entry is evicted when the bound is exceeded.
func (m *Manager) Checkpoint(g domain.Graph) {
	entries := m.entries[:m.cursor+1]
	entries = append(entries, g.Clone())

	if over := len(entries) - m.max; over > 0 {
		// Copy into a fresh slice so evicted graphs are not kept alive by
		// the backing array.
		trimmed := make([]domain.Graph, len(entries)-over)
		copy(trimmed, entries[over:])
		entries = trimmed
	}

	m.entries = entries
	m.cursor = len(entries) - 1
}

// Undo moves the cursor back one entry and returns a copy of that entry.
// It reports false at the oldest entry.
func (m *Manager) Undo() (domain.Graph, bool) {
	if !m.CanUndo() {
		return domain.Graph{}, false
	}
	m.cursor--
	return m.entries[m.cursor].Clone(), true
}

// Redo moves the cursor forward one entry and returns a copy of that entry.
// It reports false at the newest entry.
func (m *Manager) Redo() (domain.Graph, bool) {
	if !m.CanRedo() {
		return domain.Graph{}, false
	}
	m.cursor++
	return m.entries[m.cursor].Clone(), true
}

// CanUndo reports whether an older entry exists
func (m *Manager) CanUndo() bool {
	return m.cursor > 0
}

// CanRedo reports whether a newer entry exists
func (m *Manager) CanRedo() bool {
	return m.cursor < len(m.entries)-1
}

// Len returns the number of recorded entries
func (m *Manager) Len() int {
	return len(m.entries)
}

// Cursor returns the index of the entry matching the live state
func (m *Manager) Cursor() int {
	return m.cursor
}

// Max returns the entry bound
func (m *Manager) Max() int {
	return m.max
}

// At returns a copy of the entry at index i
func (m *Manager) At(i int) (domain.Graph, bool) {
	if i < 0 || i >= len(m.entries) {
		return domain.Graph{}, false
	}
	return m.entries[i].Clone(), true
}

// Entries summarizes every recorded entry, oldest first
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, g := range m.entries {
		out[i] = Entry{
			Index:       i,
			Fingerprint: g.Fingerprint(),
			NumNodes:    len(g.Nodes),
			NumEdges:    len(g.Edges),
		}
	}
	return out
}
