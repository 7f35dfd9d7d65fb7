package osmparser

import (
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// newProgressBar returns nil when progress is disabled; callers use step.
func newProgressBar(enabled bool, total int, description string) *progressbar.ProgressBar {
	if !enabled || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func step(bar *progressbar.ProgressBar) {
	if bar != nil {
		bar.Add(1)
	}
}

func finish(bar *progressbar.ProgressBar) {
	if bar != nil {
		bar.Finish()
	}
}
