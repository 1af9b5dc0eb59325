package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/gaurav-prasanna/chatdoc/core/convert"
	"github.com/gaurav-prasanna/chatdoc/core/extract"
	"github.com/gaurav-prasanna/chatdoc/core/fetch"
	"github.com/gaurav-prasanna/chatdoc/core/output"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagDocx      bool
	flagPDF       bool
	flagFilename  string
	flagOutputDir string
	flagExtract   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file|url>",
	Short: "Convert a chat export to Word or PDF",
	Long: `Convert reads a saved chat export from a file or URL and writes a Word
document or PDF next to it (or into --output_dir).

Examples:
  chatdoc convert chat.html --docx
  chatdoc convert chat.html --pdf --filename lecture-notes --output_dir ./out
  chatdoc convert https://example.com/share/abc --docx --extract`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Output format flags (mutually exclusive).
	convertCmd.Flags().BoolVar(&flagDocx, "docx", false, "Output a Word document")
	convertCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output a PDF")

	convertCmd.Flags().StringVar(&flagFilename, "filename", "", "Output name without extension (default: derived from the source)")
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	convertCmd.Flags().BoolVar(&flagExtract, "extract", false, "Strip page chrome and keep only the conversation")
}

// runConvert takes one export through the pipeline:
// read (file or URL) → extract (optional) → convert → write.
func runConvert(cmd *cobra.Command, args []string) error {
	src := args[0]

	format, err := selectFormat()
	if err != nil {
		return err
	}

	html, err := readSource(cmd.Context(), src)
	if err != nil {
		return err
	}
	if flagExtract {
		if html, err = extract.New().Extract(html); err != nil {
			return fmt.Errorf("extract: %w", err)
		}
	}

	name := flagFilename
	if name == "" {
		name = output.NameFromSource(src)
	}

	res, err := newService(cfg).Convert(cmd.Context(), convert.Request{
		HTML:     html,
		Filename: &name,
		Format:   string(format),
	})
	if err != nil {
		return err
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Write(res.Filename, res.Data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	return nil
}

// readSource loads HTML from a local path or an http(s) URL.
func readSource(ctx context.Context, src string) (string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		res, err := fetch.New().Fetch(ctx, src)
		if err != nil {
			return "", fmt.Errorf("fetch: %w", err)
		}
		return res.HTML, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}
	return string(data), nil
}

// selectFormat checks that exactly one output format is chosen.
func selectFormat() (core.Format, error) {
	switch {
	case flagDocx && flagPDF:
		return "", fmt.Errorf("only one output format allowed per run: --docx or --pdf")
	case flagDocx:
		return core.FormatDOCX, nil
	case flagPDF:
		return core.FormatPDF, nil
	default:
		return "", fmt.Errorf("exactly one output format is required: --docx or --pdf")
	}
}
