package output

import (
	"io"
	"sync"

	"github.com/ekmektech/tcpdumpdashboard/internal/report"
)

// Renderer displays or stores a snapshot.
type Renderer interface {
	Render(s report.Snapshot) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(s report.Snapshot) error

func (f RendererFunc) Render(s report.Snapshot) error { return f(s) }

// Fanout forwards snapshots to several renderers.
type Fanout struct {
	renderers []Renderer
}

func NewFanout(rs ...Renderer) *Fanout {
	f := &Fanout{}
	for _, r := range rs {
		f.Add(r)
	}
	return f
}

// Add appends r; nil renderers are ignored.
func (f *Fanout) Add(r Renderer) {
	if r != nil {
		f.renderers = append(f.renderers, r)
	}
}

// Render calls every renderer and returns the first error. A failing
// renderer does not stop the others.
func (f *Fanout) Render(s report.Snapshot) error {
	var firstErr error
	for _, r := range f.renderers {
		if err := r.Render(s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all renderers that implement io.Closer.
func (f *Fanout) Close() error {
	var firstErr error
	for _, r := range f.renderers {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Latest keeps the most recent snapshot for readers on other goroutines.
type Latest struct {
	mu   sync.RWMutex
	snap report.Snapshot
	ok   bool
}

func (l *Latest) Render(s report.Snapshot) error {
	l.mu.Lock()
	l.snap, l.ok = s, true
	l.mu.Unlock()
	return nil
}

// Get returns the last rendered snapshot, if any.
func (l *Latest) Get() (report.Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap, l.ok
}
