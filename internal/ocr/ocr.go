// Package ocr wraps the external OCR pipeline that adds a searchable text
// layer to a PDF.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// ErrPipeline is matched by every error returned from an Engine run.
var ErrPipeline = errors.New("OCR pipeline failed")

// Engine produces a text-searchable copy of a PDF.
type Engine interface {
	// Run OCRs input into output. The input file is never modified.
	Run(ctx context.Context, input, output string, opts Options) error
}

// Options configures a single OCR run. It is passed by value into every
// invocation; there is no process-wide default.
type Options struct {
	Languages []string
	SkipText  bool // leave pages that already carry text untouched
	Deskew    bool // straighten pages before recognition
}

// DefaultOptions returns the options used for batch runs: skip pages with
// text and deskew, in the given languages.
func DefaultOptions(languages ...string) Options {
	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}
	return Options{
		Languages: languages,
		SkipText:  true,
		Deskew:    true,
	}
}

// Language returns the languages in Tesseract's "+"-joined form.
func (o Options) Language() string {
	if len(o.Languages) == 0 {
		return DefaultLanguage
	}
	return strings.Join(o.Languages, "+")
}

var languageCode = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ParseLanguages splits a "+"-joined language specifier such as
// "eng+fra" into its codes. Duplicates are dropped, order is kept.
func ParseLanguages(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []string{DefaultLanguage}, nil
	}

	seen := make(map[string]bool)
	var langs []string
	for _, part := range strings.Split(spec, "+") {
		code := strings.TrimSpace(part)
		if code == "" {
			return nil, fmt.Errorf("invalid language %q: empty language code", spec)
		}
		if !languageCode.MatchString(code) {
			return nil, fmt.Errorf("invalid language code %q", code)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		langs = append(langs, code)
	}
	return langs, nil
}

// PipelineError describes a failed OCR run.
type PipelineError struct {
	Err      error
	Input    string
	Stderr   string
	ExitCode int
}

func (e *PipelineError) Error() string {
	var b strings.Builder
	b.WriteString("ocrmypdf")
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, " exited with code %d", e.ExitCode)
		if desc, ok := exitCodes[e.ExitCode]; ok {
			fmt.Fprintf(&b, " (%s)", desc)
		}
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if msg := lastLine(e.Stderr); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	}
	return b.String()
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPipeline}
	}
	return []error{ErrPipeline, e.Err}
}

// exitCodes documents ocrmypdf's exit statuses.
var exitCodes = map[int]string{
	1:   "bad arguments",
	2:   "invalid input file",
	3:   "missing dependency",
	4:   "invalid output PDF",
	5:   "file access error",
	6:   "page already has text",
	7:   "child process error",
	8:   "encrypted PDF",
	9:   "invalid config",
	10:  "PDF/A conversion failed",
	15:  "other error",
	130: "interrupted",
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
