package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows of cells inside a rounded border, one column per
// header. Widths are measured at render time with lipgloss.Width so
// styled cells line up with plain ones.
type Table struct {
	title      string
	footer     string
	headers    []string
	rows       []row
	hideHeader bool
	minWidth   int
}

type row struct {
	cells  []string
	active bool
}

// NewTable creates a table with the given column headers
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// SetTitle sets a centered title above the header row
func (t *Table) SetTitle(title string) {
	t.title = title
}

// SetFooter sets a muted line below the last row
func (t *Table) SetFooter(footer string) {
	t.footer = footer
}

// HideHeader omits the header row and its separator
func (t *Table) HideHeader() {
	t.hideHeader = true
}

// SetMinWidth pads the last column until the content is at least width wide
func (t *Table) SetMinWidth(width int) {
	t.minWidth = width
}

// AddRow appends a row. Extra cells are dropped, missing ones are blank.
func (t *Table) AddRow(cells ...string) {
	t.add(cells, false)
}

// AddActiveRow appends a row drawn in the active color
func (t *Table) AddActiveRow(cells ...string) {
	t.add(cells, true)
}

func (t *Table) add(cells []string, active bool) {
	r := make([]string, len(t.headers))
	copy(r, cells)
	t.rows = append(t.rows, row{cells: r, active: active})
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// columnWidths returns the content width of each column, before padding
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		if !t.hideHeader {
			widths[i] = lipgloss.Width(h)
		}
	}
	for _, r := range t.rows {
		for i, cell := range r.cells {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

// Render returns the bordered table, or "" when it has no columns
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	initStyles()

	widths := t.columnWidths()
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	// The title and footer span the table, so they widen the last column
	if need := max(t.minWidth, lipgloss.Width(t.title), lipgloss.Width(t.footer)); total < need {
		widths[len(widths)-1] += need - total
		total = need
	}
	rule := StyleMuted.Render(strings.Repeat("─", total))

	var lines []string
	if t.title != "" {
		title := lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Width(total).
			Align(lipgloss.Center)
		lines = append(lines, title.Render(t.title), rule)
	}

	if !t.hideHeader {
		lines = append(lines, renderCells(t.headers, widths, StyleTableHeader), rule)
	}

	for _, r := range t.rows {
		style := StyleTableCell
		if r.active {
			style = style.Inherit(StyleTableRowActive)
		}
		lines = append(lines, renderCells(r.cells, widths, style))
	}

	if t.footer != "" {
		lines = append(lines, rule, StyleMuted.Width(total).Render(t.footer))
	}

	return StyleTableBorder.Render(strings.Join(lines, "\n"))
}

func renderCells(cells []string, widths []int, style lipgloss.Style) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = style.Width(widths[i] + 2).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
