package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/pdf-ocr/internal/cli"
	"github.com/Veraticus/pdf-ocr/internal/common"
	"github.com/Veraticus/pdf-ocr/internal/config"
	"github.com/Veraticus/pdf-ocr/internal/ocr"
	"github.com/Veraticus/pdf-ocr/internal/pdftext"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries the state shared by the commands of one invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	// newEngine builds the OCR engine for a non-dry run.
	newEngine func(cfg *config.Config) (ocr.Engine, error)
	cfgFile   string
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}
	a.newEngine = a.ocrmypdf
	return a
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf-ocr [path]",
		Short: "📄 Add a searchable text layer to scanned PDFs",
		Long: `pdf-ocr scans a PDF file or a directory tree for PDFs that have no
usable text layer and runs them through ocrmypdf, writing a searchable
copy next to each original.

Originals are never modified. Files whose output already exists are
skipped unless --force is given, so an interrupted run can simply be
started again.`,
		Example: `  pdf-ocr ~/Documents/Scanned
  pdf-ocr ./archive --suffix _searchable
  pdf-ocr ./archive --dry-run
  pdf-ocr ./archive --language eng+fra --workers 4
  pdf-ocr invoice.pdf --force`,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: a.initConfig,
		RunE:              a.run,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	// Global flags
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/pdf-ocr/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// OCR flags
	flags := cmd.Flags()
	flags.String("suffix", "_ocr", "suffix appended to output file names")
	flags.Bool("force", false, "reprocess PDFs even if the output already exists")
	flags.Bool("dry-run", false, "analyze only, don't process any files")
	flags.Float64("empty-ratio", 0.5, "fraction of pages that must be empty to trigger OCR")
	flags.Int("empty-threshold", 10, "pages with fewer characters than this count as empty")
	flags.String("language", ocr.DefaultLanguage, "tesseract language code(s), e.g. 'eng' or 'eng+fra'")
	flags.String("extractor", pdftext.BackendLedongthuc, "text extraction backend ("+strings.Join(pdftext.Backends(), ", ")+")")
	flags.String("ocrmypdf", ocr.DefaultBinary, "path to the ocrmypdf executable")
	flags.StringSlice("ocrmypdf-arg", nil, "extra argument passed to ocrmypdf (repeatable), e.g. --ocrmypdf-arg=--optimize=1")
	flags.Int("workers", 1, "number of PDFs to OCR concurrently")
	flags.Duration("timeout", 0, "per-file OCR timeout (0 = none)")
	flags.String("report", "", "write a run report to this file (.json for JSON, otherwise YAML)")
	flags.Bool("no-progress", false, "disable progress bars")

	// Bind flags to viper
	binds := map[string]string{
		"logging.level":          "log-level",
		"logging.format":         "log-format",
		config.KeySuffix:         "suffix",
		config.KeyForce:          "force",
		config.KeyDryRun:         "dry-run",
		config.KeyEmptyRatio:     "empty-ratio",
		config.KeyEmptyThreshold: "empty-threshold",
		config.KeyLanguage:       "language",
		config.KeyExtractor:      "extractor",
		config.KeyOCRmyPDFPath:   "ocrmypdf",
		config.KeyOCRmyPDFArgs:   "ocrmypdf-arg",
		config.KeyWorkers:        "workers",
		config.KeyTimeout:        "timeout",
		config.KeyReport:         "report",
		config.KeyNoProgress:     "no-progress",
	}
	for key, name := range binds {
		flag := flags.Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		_ = a.v.BindPFlag(key, flag)
	}

	cmd.AddCommand(versionCmd(a))
	return cmd
}

func main() {
	a := newApp(os.Stdout, os.Stderr)
	err := newRootCmd(a).ExecuteContext(context.Background())
	if err != nil {
		if !errors.Is(err, common.ErrBatchFailed) {
			fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	config.SetDefaults(a.v)

	// Set up config file
	if a.cfgFile != "" {
		a.v.SetConfigFile(config.ExpandPath(a.cfgFile))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		a.v.AddConfigPath(filepath.Join(home, ".config", "pdf-ocr"))
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	// Environment variables, e.g. PDFOCR_OCR_WORKERS
	a.v.SetEnvPrefix("PDFOCR")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	// Read config file
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return common.NewUserError("Failed to read config", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := a.setupLogging(); err != nil {
		return common.NewUserError("Failed to setup logging", err)
	}

	slog.Debug("Configuration loaded", "config_file", a.v.ConfigFileUsed())
	return nil
}

func (a *app) setupLogging() error {
	level, err := common.ParseLevel(a.v.GetString("logging.level"))
	if err != nil {
		return err
	}
	return common.SetupLogger(a.stderr, level, a.v.GetString("logging.format"))
}

// ocrmypdf returns the ocrmypdf engine after checking it is installed.
func (a *app) ocrmypdf(cfg *config.Config) (ocr.Engine, error) {
	engine := ocr.NewOCRmyPDF(cfg.OCRmyPDFPath)
	engine.Args = cfg.OCRmyPDFArgs
	resolved, err := engine.Lookup()
	if err != nil {
		return nil, err
	}
	slog.Debug("Using ocrmypdf", "path", resolved)
	return engine, nil
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "pdf-ocr %s\n", version)
		},
	}
}
