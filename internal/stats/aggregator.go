package stats

import (
	"sync"

	"github.com/ekmektech/tcpdumpdashboard/internal/record"
)

// Key identifies one aggregate: a flag kind on a directed flow.
type Key struct {
	Kind record.FlagKind
	Flow record.FlowKey
}

// Entry is the running aggregate for a key.
type Entry struct {
	Count uint64
	Last  float64 // max epoch seconds seen
}

// KeyedEntry is a copied entry together with its key.
type KeyedEntry struct {
	Key
	Entry
}

// Aggregator holds cumulative counters since process start. Entries are
// created on first event and never removed. Record and Entries may be called
// from different goroutines.
type Aggregator struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
	total   uint64
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[Key]*Entry, 256)}
}

// Record counts one event. The stored timestamp is the maximum seen for
// the key, whatever the arrival order.
func (a *Aggregator) Record(kind record.FlagKind, flow record.FlowKey, ts float64) {
	k := Key{Kind: kind, Flow: flow}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	e, ok := a.entries[k]
	if !ok {
		a.entries[k] = &Entry{Count: 1, Last: ts}
		return
	}
	e.Count++
	if ts > e.Last {
		e.Last = ts
	}
}

// Entries copies every entry under the read lock. Order is unspecified.
func (a *Aggregator) Entries() []KeyedEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]KeyedEntry, 0, len(a.entries))
	for k, e := range a.entries {
		out = append(out, KeyedEntry{Key: k, Entry: *e})
	}
	return out
}

// Get returns a copy of the entry for key.
func (a *Aggregator) Get(kind record.FlagKind, flow record.FlowKey) (Entry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.entries[Key{Kind: kind, Flow: flow}]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of distinct keys.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Total returns the number of recorded events across all keys.
func (a *Aggregator) Total() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.total
}
