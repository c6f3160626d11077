// Package analyzer decides which PDFs need OCR. It walks directories for
// candidate files and applies an extractable-text heuristic to each one.
package analyzer

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/pdf-ocr/internal/pdftext"
)

// Heuristic defaults.
const (
	// DefaultEmptyPageThreshold is the character count below which a page
	// is considered empty.
	DefaultEmptyPageThreshold = 10
	// DefaultEmptyPageRatio is the fraction of empty pages at which a
	// document needs OCR.
	DefaultEmptyPageRatio = 0.5
)

// Evaluate reports whether doc needs OCR: true iff the fraction of pages
// with fewer than threshold characters is at least ratio. A document
// without pages never needs OCR.
func Evaluate(doc pdftext.Document, threshold int, ratio float64) (bool, error) {
	total := doc.PageCount()
	if total == 0 {
		return false, nil
	}

	empty := 0
	for page := 1; page <= total; page++ {
		n, err := doc.PageTextLen(page)
		if err != nil {
			return false, fmt.Errorf("failed to read page %d: %w", page, err)
		}
		if n < threshold {
			empty++
		}
	}

	return float64(empty)/float64(total) >= ratio, nil
}

// Verdict is the outcome of classifying one file.
type Verdict struct {
	Err      error
	Path     string
	NeedsOCR bool
}

// Unreadable reports whether the file could not be analyzed.
func (v Verdict) Unreadable() bool {
	return v.Err != nil
}

// Classifier applies the "needs OCR" heuristic to files on disk.
type Classifier struct {
	// Opener opens documents. Required.
	Opener pdftext.Opener
	// OnError, when set, is told about every file that could not be
	// analyzed, in addition to the log line.
	OnError func(path string, err error)
	// EmptyPageThreshold is the character count below which a page is
	// empty.
	EmptyPageThreshold int
	// EmptyPageRatio is the fraction of empty pages, in [0,1], at which a
	// document needs OCR.
	EmptyPageRatio float64
}

// NewClassifier creates a classifier with the default thresholds.
func NewClassifier(opener pdftext.Opener) *Classifier {
	return &Classifier{
		Opener:             opener,
		EmptyPageThreshold: DefaultEmptyPageThreshold,
		EmptyPageRatio:     DefaultEmptyPageRatio,
	}
}

// Validate checks the thresholds.
func (c *Classifier) Validate() error {
	if c.Opener == nil {
		return fmt.Errorf("classifier has no document opener")
	}
	if c.EmptyPageThreshold < 0 {
		return fmt.Errorf("empty page threshold must be non-negative, got %d", c.EmptyPageThreshold)
	}
	if c.EmptyPageRatio < 0 || c.EmptyPageRatio > 1 {
		return fmt.Errorf("empty page ratio must be between 0 and 1, got %g", c.EmptyPageRatio)
	}
	return nil
}

// Classify analyzes the file at path. Errors are carried in the verdict;
// an unreadable file never needs OCR.
func (c *Classifier) Classify(path string) Verdict {
	needs, err := c.classify(path)
	if err != nil {
		slog.Warn("Failed to analyze PDF", "file", path, "error", err)
		if c.OnError != nil {
			c.OnError(path, err)
		}
		return Verdict{Path: path, Err: err}
	}
	return Verdict{Path: path, NeedsOCR: needs}
}

// NeedsOCR reports whether the file at path needs OCR. Unreadable files
// are logged and reported as not needing OCR.
func (c *Classifier) NeedsOCR(path string) bool {
	return c.Classify(path).NeedsOCR
}

func (c *Classifier) classify(path string) (needs bool, err error) {
	doc, err := c.Opener.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			slog.Debug("Failed to close PDF", "file", path, "error", closeErr)
		}
	}()

	return Evaluate(doc, c.EmptyPageThreshold, c.EmptyPageRatio)
}
