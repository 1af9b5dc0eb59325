package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/chatdoc/core/extract"
	"github.com/gaurav-prasanna/chatdoc/core/normalize"
	"github.com/spf13/cobra"
)

var (
	flagMarkdown         bool
	flagNormalizeExtract bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file|url>",
	Short: "Print the normalized HTML (or Markdown) for an export",
	Long: `Normalize runs the rewrite pipeline without converting, which is useful
to inspect what pandoc receives.

Examples:
  chatdoc normalize chat.html
  chatdoc normalize chat.html --markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Print Markdown instead of HTML")
	normalizeCmd.Flags().BoolVar(&flagNormalizeExtract, "extract", false, "Strip page chrome and keep only the conversation")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	html, err := readSource(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if flagNormalizeExtract {
		if html, err = extract.New().Extract(html); err != nil {
			return fmt.Errorf("extract: %w", err)
		}
	}

	out, err := normalize.New().Normalize(html)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if flagMarkdown {
		if out, err = normalize.ToMarkdown(out); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
