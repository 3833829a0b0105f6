package output

import (
	"io"
	"sync"

	"github.com/ekmektech/tcpdumpdashboard/internal/report"
)

// TextSink prints every snapshot to w, for when stdout is not a terminal.
type TextSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (t *TextSink) Render(s report.Snapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, s.Text+"\n")
	return err
}
