package render

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/chatdoc/core"
)

const (
	docxInputName  = "temp.html"
	docxOutputName = "temp.docx"
	// docxReader lets pandoc pick up $...$ and \[...\] as TeX math.
	docxReader = "html+tex_math_dollars+tex_math_double_backslash"
)

// DocxRenderer converts normalized HTML into a Word document with pandoc.
type DocxRenderer struct {
	runner core.Runner
	pandoc string
}

// NewDocxRenderer creates a DocxRenderer invoking the pandoc binary at path.
func NewDocxRenderer(runner core.Runner, path string) *DocxRenderer {
	if path == "" {
		path = "pandoc"
	}
	return &DocxRenderer{runner: runner, pandoc: path}
}

// Render writes html to workDir, runs pandoc and returns the .docx bytes.
func (r *DocxRenderer) Render(ctx context.Context, workDir string, html string) ([]byte, error) {
	in := filepath.Join(workDir, docxInputName)
	out := filepath.Join(workDir, docxOutputName)
	if err := writeInput(in, html); err != nil {
		return nil, err
	}

	res, err := r.runner.Run(ctx, workDir, r.pandoc, in, "-f", docxReader, "-t", "docx", "-o", out)
	if err != nil {
		return nil, processError("pandoc", res, err)
	}
	if res.ExitCode != 0 {
		return nil, core.Errorf(core.KindConversionFailed, "Failed to convert HTML to DOCX: %s", res.Diagnostics())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, core.Wrap(core.KindConversionFailed, err, "Failed to convert HTML to DOCX: output file was not created")
	}
	sniff(data, core.MediaTypeDOCX)
	return data, nil
}

// Extension returns the file extension for Word output.
func (r *DocxRenderer) Extension() string {
	return string(core.FormatDOCX)
}

// MediaType returns the Word document media type.
func (r *DocxRenderer) MediaType() string {
	return core.MediaTypeDOCX
}
