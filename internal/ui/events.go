package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekmektech/tcpdumpdashboard/internal/report"
)

// SnapshotMsg carries a freshly built snapshot into the TUI.
type SnapshotMsg report.Snapshot

// StatusMsg updates the ingestion counters shown in the header.
type StatusMsg struct {
	Lines     uint64
	Events    uint64
	Malformed uint64
	State     string // capture reader state
	Elapsed   time.Duration
}

// Mode selects the UI output mode.
type Mode int

const (
	ModeTUI    Mode = iota // full bubbletea interactive
	ModeText               // snapshot text printed every refresh
	ModeSilent             // no terminal output
)

// Sender is the part of *tea.Program the renderer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramRenderer forwards snapshots to a running bubbletea program.
type ProgramRenderer struct {
	P Sender
}

func (r ProgramRenderer) Render(s report.Snapshot) error {
	r.P.Send(SnapshotMsg(s))
	return nil
}
