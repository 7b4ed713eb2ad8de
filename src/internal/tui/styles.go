// Package tui renders lipgloss tables and boxes for list-remote, the root
// help screen and the version banner.
package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette holds the ANSI 256 colors shared by every style
var palette = struct {
	primary, version, active, muted lipgloss.Color
}{
	primary: lipgloss.Color("39"),
	version: lipgloss.Color("213"),
	active:  lipgloss.Color("42"),
	muted:   lipgloss.Color("245"),
}

var (
	initOnce sync.Once

	colorPrimary lipgloss.Color

	StyleVersion lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleInfoBox lipgloss.Style

	StyleTableHeader    lipgloss.Style
	StyleTableCell      lipgloss.Style
	StyleTableRowActive lipgloss.Style
	StyleTableBorder    lipgloss.Style

	CheckMark string
)

// initStyles builds the styles on first use. Setting the profile up front
// skips lipgloss's terminal query, which is slow on some terminals.
func initStyles() {
	initOnce.Do(func() {
		lipgloss.SetColorProfile(termenv.TrueColor)

		colorPrimary = palette.primary
		rounded := func(border lipgloss.Color) lipgloss.Style {
			return lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(border).
				Padding(0, 1)
		}

		StyleVersion = lipgloss.NewStyle().Bold(true).Foreground(palette.version)
		StyleMuted = lipgloss.NewStyle().Foreground(palette.muted)
		StyleInfoBox = rounded(palette.primary)

		StyleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(palette.primary).PaddingRight(2)
		StyleTableCell = lipgloss.NewStyle().PaddingRight(2)
		StyleTableRowActive = lipgloss.NewStyle().Foreground(palette.active)
		StyleTableBorder = rounded(palette.muted)

		CheckMark = lipgloss.NewStyle().Foreground(palette.active).Render("✓")
	})
}

// RenderVersion renders a version number in the version color
func RenderVersion(version string) string {
	initStyles()
	return StyleVersion.Render(version)
}

// RenderInfoBox draws content inside a rounded primary-colored border
func RenderInfoBox(content string) string {
	initStyles()
	return StyleInfoBox.Render(content)
}

// GetCheckMark returns the installed marker used in list-remote
func GetCheckMark() string {
	initStyles()
	return CheckMark
}
