package render

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gaurav-prasanna/chatdoc/core"
)

const (
	pdfInputName  = "temp_mathjax.html"
	pdfOutputName = "temp_mathjax.pdf"
	// javascriptDelay is a fallback for pages whose ReadySignal never fires.
	javascriptDelay = 2000
)

// PDFRenderer prints HTML to PDF with wkhtmltopdf after MathJax has
// typeset it.
type PDFRenderer struct {
	runner      core.Runner
	wkhtmltopdf string
}

// NewPDFRenderer creates a PDFRenderer invoking the wkhtmltopdf binary at path.
func NewPDFRenderer(runner core.Runner, path string) *PDFRenderer {
	if path == "" {
		path = "wkhtmltopdf"
	}
	return &PDFRenderer{runner: runner, wkhtmltopdf: path}
}

// Render wraps html for MathJax, prints it and returns the PDF bytes.
// wkhtmltopdf often exits non-zero on harmless resource warnings, so a
// non-empty output file counts as success whatever the exit code.
func (r *PDFRenderer) Render(ctx context.Context, workDir string, html string) ([]byte, error) {
	in := filepath.Join(workDir, pdfInputName)
	out := filepath.Join(workDir, pdfOutputName)
	if err := writeInput(in, WrapForRendering(html)); err != nil {
		return nil, err
	}

	res, err := r.runner.Run(ctx, workDir, r.wkhtmltopdf,
		"--enable-local-file-access",
		"--javascript-delay", strconv.Itoa(javascriptDelay),
		"--window-status", ReadySignal,
		in, out,
	)
	if err != nil {
		return nil, processError("wkhtmltopdf", res, err)
	}

	if info, statErr := os.Stat(out); statErr == nil && info.Size() > 0 {
		data, err := os.ReadFile(out)
		if err != nil {
			return nil, core.Wrap(core.KindInternal, err, "reading PDF output: %v", err)
		}
		sniff(data, core.MediaTypePDF)
		return data, nil
	}

	if res.ExitCode != 0 {
		return nil, core.Errorf(core.KindConversionFailed,
			"Failed to convert HTML to PDF with wkhtmltopdf. stderr: %s", res.Diagnostics())
	}
	return nil, core.Errorf(core.KindEmptyOutput, "PDF file is empty after conversion.")
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return string(core.FormatPDF)
}

// MediaType returns the PDF media type.
func (r *PDFRenderer) MediaType() string {
	return core.MediaTypePDF
}
