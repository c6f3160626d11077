package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/pdf-ocr/internal/analyzer"
	"github.com/schollz/progressbar/v3"
)

const maxLabelRunes = 30

// Progress renders a progress bar over a known number of files.
type Progress struct {
	bar   *progressbar.ProgressBar
	title string
}

// NewProgress creates a bar of total steps. A hidden bar still tracks
// state but draws nothing.
func NewProgress(w io.Writer, total int, title string, visible bool) *Progress {
	p := &Progress{title: title}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(describe(title, "")),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if visible {
				if _, err := fmt.Fprintln(w); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}
		}),
	)
	return p
}

// Set moves the bar to done steps and labels it with path's base name.
func (p *Progress) Set(done int, path string) {
	p.bar.Describe(describe(p.title, path))
	if err := p.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}

// AnalysisStep returns a Partition callback advancing the bar per file.
func (p *Progress) AnalysisStep() func(index int, v analyzer.Verdict) error {
	return func(index int, v analyzer.Verdict) error {
		p.Set(index, v.Path)
		return nil
	}
}

// OnProgress implements processor.ProgressObserver. It is called before a
// file starts, so the bar shows index-1 files as dispatched.
func (p *Progress) OnProgress(index, _ int, path string) error {
	p.Set(index-1, path)
	slog.Debug("Processing PDF", "index", index, "path", path)
	return nil
}

func describe(title, path string) string {
	desc := "[cyan][bold]" + title + "[reset]"
	if path == "" {
		return desc
	}
	return desc + " " + truncate(filepath.Base(path), maxLabelRunes)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
