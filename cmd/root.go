// Package cmd implements the CLI commands for chatdoc using Cobra.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/gaurav-prasanna/chatdoc/config"
	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/gaurav-prasanna/chatdoc/core/convert"
	"github.com/gaurav-prasanna/chatdoc/core/normalize"
	"github.com/gaurav-prasanna/chatdoc/core/render"
	"github.com/gaurav-prasanna/chatdoc/core/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Persistent flag variables.
var (
	flagConfig   string
	flagLogLevel string
)

// cfg is loaded before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "chatdoc",
	Short: "chatdoc converts chat exports with math into Word or PDF documents",
	Long: `chatdoc turns ChatGPT HTML exports containing KaTeX formulas into editable
Word documents (via pandoc) or PDFs (via wkhtmltopdf and MathJax).

Usage:
  chatdoc serve [--addr :8000]
  chatdoc convert <file|url> --docx|--pdf [flags]
  chatdoc normalize <file> [--markdown]`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/chatdoc/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err))
		os.Exit(ErrorExitCode(err))
	}
}

// setup loads configuration and configures logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		loaded.LogLevel = flagLogLevel
	}
	cfg = loaded
	return setupLogging(cfg)
}

func setupLogging(c config.Config) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// newService wires the conversion pipeline from configuration.
func newService(c config.Config) *convert.Service {
	exec := runner.New(core.ProcessTimeout)
	normalizer := normalize.New()

	var pdf core.Renderer = render.NewPDFRenderer(exec, c.WkhtmltopdfPath)
	if c.PDFEngine == config.EngineNative {
		pdf = render.NewNativePDFRenderer(normalizer, c.NativeFontPath)
	}

	opts := []convert.Option{
		convert.WithTempDir(c.TempDir),
		convert.WithMaxConcurrent(c.MaxConcurrent),
	}
	if c.PDFPreclean {
		opts = append(opts, convert.WithPDFPreclean(normalize.Clean))
	}
	return convert.New(normalizer, render.NewDocxRenderer(exec, c.PandocPath), pdf, opts...)
}
