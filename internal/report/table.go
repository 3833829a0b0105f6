package report

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Headers is the fixed column order.
var Headers = []string{"Type", "Socket", "Last Time", "Count"}

const (
	headerRow = 0
	countCol  = 3
)

// orgBorder draws an org-mode style table: pipes between columns and a
// "|---+---|" rule under the header.
var orgBorder = lipgloss.Border{
	Top:          "-",
	Bottom:       "-",
	Left:         "|",
	Right:        "|",
	TopLeft:      "|",
	TopRight:     "|",
	BottomLeft:   "|",
	BottomRight:  "|",
	MiddleLeft:   "|",
	MiddleRight:  "|",
	Middle:       "+",
	MiddleTop:    "+",
	MiddleBottom: "+",
}

var (
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	countStyle = cellStyle.Align(lipgloss.Right)
)

// RenderTable lays rows out as plain text under Headers.
func RenderTable(rows []Row) string {
	t := table.New().
		Border(orgBorder).
		BorderTop(false).
		BorderBottom(false).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == countCol && row != headerRow {
				return countStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		t.Row(r.Kind.String(), r.Flow.String(), r.LastTime, strconv.FormatUint(r.Count, 10))
	}
	return t.Render()
}
