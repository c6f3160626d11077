package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/pdf-ocr/internal/analyzer"
	"github.com/Veraticus/pdf-ocr/internal/common"
	"github.com/Veraticus/pdf-ocr/internal/ocr"
	"github.com/Veraticus/pdf-ocr/internal/pdftext"
	"github.com/Veraticus/pdf-ocr/internal/processor"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeySuffix         = "ocr.suffix"
	KeyForce          = "ocr.force"
	KeyLanguage       = "ocr.language"
	KeyWorkers        = "ocr.workers"
	KeyTimeout        = "ocr.timeout"
	KeyOCRmyPDFPath   = "ocr.ocrmypdf_path"
	KeyOCRmyPDFArgs   = "ocr.extra_args"
	KeyEmptyRatio     = "detect.empty_ratio"
	KeyEmptyThreshold = "detect.empty_threshold"
	KeyExtractor      = "detect.extractor"
	KeyDryRun         = "run.dry_run"
	KeyReport         = "run.report"
	KeyNoProgress     = "run.no_progress"
)

// Config holds the settings of one pdf-ocr run.
type Config struct {
	Suffix         string
	OCRmyPDFPath   string
	Extractor      string
	ReportPath     string
	Languages      []string
	OCRmyPDFArgs   []string
	EmptyRatio     float64
	Timeout        time.Duration
	EmptyThreshold int
	Workers        int
	Force          bool
	DryRun         bool
	NoProgress     bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySuffix, processor.DefaultSuffix)
	v.SetDefault(KeyForce, false)
	v.SetDefault(KeyLanguage, ocr.DefaultLanguage)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyOCRmyPDFPath, ocr.DefaultBinary)
	v.SetDefault(KeyOCRmyPDFArgs, []string{})
	v.SetDefault(KeyEmptyRatio, analyzer.DefaultEmptyPageRatio)
	v.SetDefault(KeyEmptyThreshold, analyzer.DefaultEmptyPageThreshold)
	v.SetDefault(KeyExtractor, pdftext.BackendLedongthuc)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyReport, "")
	v.SetDefault(KeyNoProgress, false)
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (*Config, error) {
	langs, err := ocr.ParseLanguages(v.GetString(KeyLanguage))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	cfg := &Config{
		Suffix:         v.GetString(KeySuffix),
		Force:          v.GetBool(KeyForce),
		Languages:      langs,
		Workers:        v.GetInt(KeyWorkers),
		Timeout:        v.GetDuration(KeyTimeout),
		OCRmyPDFPath:   ExpandPath(v.GetString(KeyOCRmyPDFPath)),
		OCRmyPDFArgs:   v.GetStringSlice(KeyOCRmyPDFArgs),
		EmptyRatio:     v.GetFloat64(KeyEmptyRatio),
		EmptyThreshold: v.GetInt(KeyEmptyThreshold),
		Extractor:      v.GetString(KeyExtractor),
		DryRun:         v.GetBool(KeyDryRun),
		ReportPath:     ExpandPath(v.GetString(KeyReport)),
		NoProgress:     v.GetBool(KeyNoProgress),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if err := c.ProcessorOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if c.EmptyRatio < 0 || c.EmptyRatio > 1 {
		return fmt.Errorf("%w: empty ratio must be between 0 and 1, got %g", common.ErrInvalidConfig, c.EmptyRatio)
	}
	if c.EmptyThreshold < 0 {
		return fmt.Errorf("%w: empty threshold must be non-negative, got %d", common.ErrInvalidConfig, c.EmptyThreshold)
	}
	if _, err := pdftext.NewOpener(c.Extractor); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return nil
}

// ProcessorOptions returns the batch processing options.
func (c *Config) ProcessorOptions() processor.Options {
	return processor.Options{
		Suffix:  c.Suffix,
		Force:   c.Force,
		OCR:     ocr.DefaultOptions(c.Languages...),
		Timeout: c.Timeout,
		Workers: c.Workers,
	}
}

// Classifier returns a classifier configured with the detection settings.
func (c *Config) Classifier() (*analyzer.Classifier, error) {
	opener, err := pdftext.NewOpener(c.Extractor)
	if err != nil {
		return nil, err
	}
	classifier := analyzer.NewClassifier(opener)
	classifier.EmptyPageRatio = c.EmptyRatio
	classifier.EmptyPageThreshold = c.EmptyThreshold
	if err := classifier.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return classifier, nil
}
