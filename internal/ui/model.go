package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Model is the bubbletea TUI model. It only displays snapshots; the
// aggregator is never touched from the UI goroutine.
type Model struct {
	Title string

	banner []string
	table  []string
	rows   int
	taken  time.Time

	status StatusMsg

	offset int // scroll offset into table body

	width, height int
	quitting      bool
}

func NewModel(title string) Model {
	return Model{Title: title}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()

	case SnapshotMsg:
		m.banner = splitLines(msg.Banner)
		m.table = splitLines(msg.Table)
		m.rows = len(msg.Rows)
		m.taken = msg.Taken
		m.clampOffset()

	case StatusMsg:
		m.status = msg
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "j", "down":
		m.offset++
	case "k", "up":
		m.offset--
	case "pgdown", "ctrl+d":
		m.offset += m.visibleRows()
	case "pgup", "ctrl+u":
		m.offset -= m.visibleRows()
	case "g", "home":
		m.offset = 0
	case "G", "end":
		m.offset = m.maxOffset()
	}
	m.clampOffset()
	return m, nil
}

// tableBody is the table without its header and rule lines.
func (m Model) tableBody() []string {
	if len(m.table) <= 2 {
		return nil
	}
	return m.table[2:]
}

// visibleRows returns how many table body lines fit on screen.
// Layout: 2 header lines + banner + 2 table header lines + 1 help line.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return len(m.tableBody())
	}
	rows := m.height - 2 - len(m.banner) - 2 - 1
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) maxOffset() int {
	n := len(m.tableBody()) - m.visibleRows()
	if n < 0 {
		return 0
	}
	return n
}

func (m *Model) clampOffset() {
	if m.offset > m.maxOffset() {
		m.offset = m.maxOffset()
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// ── View ──────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 40 {
		w = 80
	}

	var b strings.Builder
	m.renderHeader(&b, w)

	if m.table == nil {
		b.WriteString(styleDim.Render(" waiting for first refresh...") + "\n")
		m.renderHelp(&b)
		return b.String()
	}

	for _, l := range m.banner {
		b.WriteString(styleDim.Render(truncStr(l, w)) + "\n")
	}
	m.renderTable(&b, w)
	m.renderHelp(&b)
	return b.String()
}

func (m Model) renderHeader(b *strings.Builder, w int) {
	title := styleAccent.Render(m.Title)
	meta := fmt.Sprintf(" · %s · lines %s · events %s",
		m.status.State, fmtCompact(m.status.Lines), fmtCompact(m.status.Events))
	if m.status.Elapsed > 0 {
		meta += " · up " + m.status.Elapsed.Truncate(time.Second).String()
	}
	if !m.taken.IsZero() {
		meta += " · updated " + m.taken.Format("15:04:05")
	}
	b.WriteString(" " + title + styleDim.Render(meta))
	if m.status.Malformed > 0 {
		b.WriteString(styleWarn.Render(fmt.Sprintf(" · malformed %s", fmtCompact(m.status.Malformed))))
	}
	b.WriteString("\n")
	b.WriteString(styleSep.Render(" "+strings.Repeat("─", w-2)) + "\n")
}

func (m Model) renderTable(b *strings.Builder, w int) {
	if len(m.table) > 0 {
		b.WriteString(styleColHeader.Render(truncStr(m.table[0], w)) + "\n")
	}
	if len(m.table) > 1 {
		b.WriteString(styleRule.Render(truncStr(m.table[1], w)) + "\n")
	}

	body := m.tableBody()
	end := m.offset + m.visibleRows()
	if end > len(body) {
		end = len(body)
	}
	for _, l := range body[m.offset:end] {
		b.WriteString(styleRow(l).Render(truncStr(l, w)) + "\n")
	}
}

func (m Model) renderHelp(b *strings.Builder) {
	pos := ""
	if body := len(m.tableBody()); body > m.visibleRows() {
		pos = fmt.Sprintf("  [%d-%d of %d]", m.offset+1, min(m.offset+m.visibleRows(), body), body)
	}
	b.WriteString(styleHelp.Render(" j/k scroll · g/G top/bottom · q quit"+pos) + "\n")
}

// styleRow colours a table line by the flag kind in its first column.
func styleRow(line string) lipgloss.Style {
	cells := strings.SplitN(strings.TrimPrefix(line, "|"), "|", 2)
	kind := strings.TrimSpace(cells[0])
	switch {
	case strings.HasPrefix(kind, "Syn"):
		return styleSyn
	case strings.HasPrefix(kind, "Fin"):
		return styleFin
	case strings.HasPrefix(kind, "Reset"):
		return styleReset
	}
	return styleDim
}

// ── Formatting helpers ────────────────────────────────────────────────

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

func fmtCompact(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 10_000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	if n < 1_000_000 {
		return fmt.Sprintf("%.0fk", float64(n)/1000)
	}
	if n < 10_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	return fmt.Sprintf("%.0fM", float64(n)/1_000_000)
}

func truncStr(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	return ansi.Truncate(s, w, "…")
}
