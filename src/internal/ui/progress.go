package ui

import (
	"github.com/schollz/progressbar/v3"
)

// ProgressBar counts completed units of work on stderr
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a bar for total units with a description
func NewProgressBar(total int, description string) *ProgressBar {
	outMu.Lock()
	w := stderr
	outMu.Unlock()

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)
	return &ProgressBar{bar: bar}
}

// Describe replaces the text shown next to the bar
func (p *ProgressBar) Describe(description string) {
	p.bar.Describe(description)
}

// Increment advances the bar by one unit
func (p *ProgressBar) Increment() {
	_ = p.bar.Add(1)
}

// Finish completes and clears the bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}
