// Package report writes a machine-readable summary of a run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/pdf-ocr/internal/analyzer"
	"github.com/Veraticus/pdf-ocr/internal/model"
	"gopkg.in/yaml.v3"
)

// Format is a report serialization.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension: .json selects JSON,
// anything else YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Unreadable is a file the classifier could not analyze.
type Unreadable struct {
	Path  string            `json:"path" yaml:"path"`
	Error string            `json:"error" yaml:"error"`
	Kind  model.FailureKind `json:"kind" yaml:"kind"`
}

// Report summarizes one run.
type Report struct {
	StartedAt  time.Time          `json:"started_at" yaml:"started_at"`
	Batch      *model.BatchResult `json:"batch,omitempty" yaml:"batch,omitempty"`
	Target     string             `json:"target" yaml:"target"`
	Suffix     string             `json:"suffix" yaml:"suffix"`
	Language   string             `json:"language" yaml:"language"`
	NeedsOCR   []string           `json:"needs_ocr" yaml:"needs_ocr"`
	Unreadable []Unreadable       `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
	Duration   time.Duration      `json:"duration_ns" yaml:"duration"`
	Scanned    int                `json:"scanned" yaml:"scanned"`
	HasText    int                `json:"has_text" yaml:"has_text"`
	DryRun     bool               `json:"dry_run" yaml:"dry_run"`
}

// SetPartition records the classification outcome.
func (r *Report) SetPartition(p analyzer.Partition) {
	r.Scanned = p.Total()
	r.NeedsOCR = append([]string(nil), p.NeedsOCR...)
	r.HasText = len(p.HasText)
	r.Unreadable = r.Unreadable[:0]
	for _, v := range p.Unreadable {
		r.Unreadable = append(r.Unreadable, Unreadable{
			Path:  v.Path,
			Error: v.Err.Error(),
			Kind:  model.FailureUnreadablePDF,
		})
	}
}

// Encode writes r to w in the given format.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteFile writes r to path, choosing the format from its extension.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if err := r.Encode(f, FormatFor(path)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}
