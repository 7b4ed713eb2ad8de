package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTable_Render(t *testing.T) {
	table := NewTable("", "Version", "LTS")
	table.SetTitle("Node.js")
	table.AddRow(GetCheckMark(), "20.12.2", "Iron")
	table.AddActiveRow("", "18.20.2", "Hydrogen")
	table.AddRow("", "22.1.0")

	out := table.Render()

	for _, want := range []string{"Node.js", "Version", "LTS", "20.12.2", "Iron", "18.20.2", "Hydrogen", "22.1.0", "✓"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
	if table.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", table.RowCount())
	}
}

func TestTable_WidthsIgnoreANSI(t *testing.T) {
	table := NewTable("V")
	table.AddRow(RenderVersion("18.20.2"))

	if w := table.columnWidths()[0]; w != len("18.20.2") {
		t.Errorf("width = %d, want %d (styled cell should measure as plain text)", w, len("18.20.2"))
	}
}

func TestTable_MinWidth(t *testing.T) {
	table := NewTable("")
	table.HideHeader()
	table.SetMinWidth(60)
	table.AddRow("short")

	out := table.Render()
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w < 60 {
			t.Errorf("line width %d below minimum: %q", w, line)
		}
	}
	if !strings.Contains(out, "short") {
		t.Error("row content missing")
	}
}

func TestTable_Footer(t *testing.T) {
	table := NewTable("Version")
	table.AddRow("20.12.2", "dropped")
	table.SetFooter("Latest LTS: 20.12.2")

	out := table.Render()
	if !strings.Contains(out, "Latest LTS: 20.12.2") {
		t.Errorf("footer missing:\n%s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Error("cells beyond the header count should be dropped")
	}
	if strings.Index(out, "Latest LTS") < strings.Index(out, "20.12.2") {
		t.Error("footer should follow the rows")
	}
}

func TestTable_WideTitleAndFooter(t *testing.T) {
	table := NewTable("V")
	table.SetTitle("Node.js releases available upstream")
	table.SetFooter("Run 'rtvm install <version>' to install one")
	table.AddRow("1")

	out := table.Render()
	for _, want := range []string{"Node.js releases available upstream", "Run 'rtvm install <version>' to install one"} {
		if !strings.Contains(out, want) {
			t.Errorf("%q was wrapped or lost:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	for _, line := range lines {
		if lipgloss.Width(line) != lipgloss.Width(lines[0]) {
			t.Errorf("ragged table, line %q has width %d, want %d", line, lipgloss.Width(line), lipgloss.Width(lines[0]))
		}
	}
}

func TestTable_NoHeaders(t *testing.T) {
	if out := NewTable().Render(); out != "" {
		t.Errorf("Render() with no columns = %q, want empty", out)
	}
}

func TestRenderInfoBox(t *testing.T) {
	out := RenderInfoBox("rtvm " + RenderVersion("dev"))
	if !strings.Contains(out, "rtvm") || !strings.Contains(out, "dev") {
		t.Errorf("RenderInfoBox() = %q", out)
	}
	if lines := strings.Split(out, "\n"); len(lines) != 3 {
		t.Errorf("info box has %d lines, want 3 (border, content, border)", len(lines))
	}
}
