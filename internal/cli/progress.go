package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// TableProgress renders a progress bar over the tables of one input. It
// satisfies the pipeline observer interface.
type TableProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	name   string
	rows   int
	mu     sync.Mutex
}

// NewTableProgress creates a progress reporter for the named input.
func NewTableProgress(writer io.Writer, name string) *TableProgress {
	if writer == nil {
		writer = os.Stderr
	}
	return &TableProgress{writer: writer, name: name}
}

// TablesExtracted sizes the bar once extraction is done.
func (p *TableProgress) TablesExtracted(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Normalizing %s...[reset]", p.name)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// TableNormalized advances the bar by one table.
func (p *TableProgress) TableNormalized(_, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rows += rows
	if p.bar == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Rows returns the number of rows seen so far.
func (p *TableProgress) Rows() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows
}

// Finish completes the bar even if some tables were never reported.
func (p *TableProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
