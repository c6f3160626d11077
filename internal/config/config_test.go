package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/pdf-ocr/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, values map[string]any) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t, nil))
	require.NoError(t, err)

	assert.Equal(t, "_ocr", cfg.Suffix)
	assert.Equal(t, []string{"eng"}, cfg.Languages)
	assert.Equal(t, 0.5, cfg.EmptyRatio)
	assert.Equal(t, 10, cfg.EmptyThreshold)
	assert.Equal(t, "ledongthuc", cfg.Extractor)
	assert.Equal(t, "ocrmypdf", cfg.OCRmyPDFPath)
	assert.Empty(t, cfg.OCRmyPDFArgs)
	assert.Equal(t, 1, cfg.Workers)
	assert.Zero(t, cfg.Timeout)
	assert.False(t, cfg.Force)
	assert.False(t, cfg.DryRun)

	opts := cfg.ProcessorOptions()
	assert.Equal(t, "eng", opts.OCR.Language())
	assert.True(t, opts.OCR.SkipText)
	assert.True(t, opts.OCR.Deskew)

	classifier, err := cfg.Classifier()
	require.NoError(t, err)
	assert.Equal(t, 0.5, classifier.EmptyPageRatio)
	assert.Equal(t, 10, classifier.EmptyPageThreshold)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(newViper(t, map[string]any{
		KeySuffix:         "_searchable",
		KeyLanguage:       "eng+fra",
		KeyEmptyRatio:     0.75,
		KeyEmptyThreshold: 25,
		KeyExtractor:      "pdfcpu",
		KeyWorkers:        4,
		KeyTimeout:        "10m",
		KeyForce:          true,
		KeyDryRun:         true,
		KeyOCRmyPDFArgs:   []string{"--optimize", "1"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "_searchable", cfg.Suffix)
	assert.Equal(t, []string{"eng", "fra"}, cfg.Languages)
	assert.Equal(t, 0.75, cfg.EmptyRatio)
	assert.Equal(t, 25, cfg.EmptyThreshold)
	assert.Equal(t, "pdfcpu", cfg.Extractor)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, []string{"--optimize", "1"}, cfg.OCRmyPDFArgs)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "ratio above one", key: KeyEmptyRatio, value: 1.2},
		{name: "negative ratio", key: KeyEmptyRatio, value: -0.5},
		{name: "negative threshold", key: KeyEmptyThreshold, value: -3},
		{name: "empty suffix", key: KeySuffix, value: ""},
		{name: "unknown extractor", key: KeyExtractor, value: "mupdf"},
		{name: "bad language", key: KeyLanguage, value: "eng++fra"},
		{name: "negative workers", key: KeyWorkers, value: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(t, map[string]any{tt.key: tt.value}))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ocr:
  suffix: -text
  language: deu
detect:
  empty_ratio: 0.9
`), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "-text", cfg.Suffix)
	assert.Equal(t, []string{"deu"}, cfg.Languages)
	assert.Equal(t, 0.9, cfg.EmptyRatio)
	assert.Equal(t, 10, cfg.EmptyThreshold, "unset keys keep defaults")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PDFOCR_TEST_DIR", "/srv/scans")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "bin", "ocrmypdf"), ExpandPath("~/bin/ocrmypdf"))
	assert.Equal(t, "/srv/scans/report.yaml", ExpandPath("$PDFOCR_TEST_DIR/report.yaml"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}
