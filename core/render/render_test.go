package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/gaurav-prasanna/chatdoc/core/normalize"
)

// fakeRunner records invocations and writes output to the last argument.
type fakeRunner struct {
	output   []byte
	exitCode int
	stderr   string
	err      error

	name  string
	args  []string
	dir   string
	input string
}

func (f *fakeRunner) Run(ctx context.Context, dir string, name string, args ...string) (*core.RunResult, error) {
	f.name, f.args, f.dir = name, args, dir
	for _, a := range args {
		if strings.HasSuffix(a, ".html") {
			data, err := os.ReadFile(a)
			if err != nil {
				return nil, err
			}
			f.input = string(data)
		}
	}
	res := &core.RunResult{ExitCode: f.exitCode, Stderr: f.stderr}
	if f.err != nil {
		res.ExitCode = -1
		return res, f.err
	}
	if f.output != nil {
		if err := os.WriteFile(args[len(args)-1], f.output, 0o600); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func TestWrapForRendering(t *testing.T) {
	inner := `<p>Energy: $E=mc^2$</p><span class="katex-mathml">raw</span>`
	page := WrapForRendering(inner)

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="zh-CN">`,
		`<meta charset="UTF-8" />`,
		`<div id="` + ContainerID + `">`,
		inner,
		MathJaxURL,
		`document.getElementById("` + ContainerID + `")`,
		`window.status = "` + ReadySignal + `"`,
		`inlineMath: [["\\(", "\\)"]]`,
		`["$$", "$$"]`,
		`["\\[", "\\]"]`,
		"processEscapes: true",
		"font-size: 34px",
		"font-size: 24px",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("wrapped page missing %q", want)
		}
	}
	if strings.Index(page, inner) > strings.Index(page, "<script") {
		t.Errorf("content must precede the bootstrap script")
	}
}

func TestDocxRenderer_Success(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{output: []byte("PK\x03\x04docx")}
	r := NewDocxRenderer(runner, "")

	data, err := r.Render(context.Background(), dir, "<p>Hello</p>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(data) != "PK\x03\x04docx" {
		t.Fatalf("unexpected data %q", data)
	}
	if runner.name != "pandoc" || runner.dir != dir {
		t.Fatalf("ran %q in %q", runner.name, runner.dir)
	}
	want := []string{
		filepath.Join(dir, docxInputName),
		"-f", "html+tex_math_dollars+tex_math_double_backslash",
		"-t", "docx",
		"-o", filepath.Join(dir, docxOutputName),
	}
	if !slices.Equal(runner.args, want) {
		t.Fatalf("args = %q, want %q", runner.args, want)
	}
	if runner.input != "<p>Hello</p>" {
		t.Fatalf("pandoc input = %q", runner.input)
	}
	if r.Extension() != "docx" || r.MediaType() != core.MediaTypeDOCX {
		t.Fatalf("unexpected extension/media type %q %q", r.Extension(), r.MediaType())
	}
}

func TestDocxRenderer_Failures(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		wantKind core.ErrorKind
		wantMsg  string
	}{
		{"non-zero exit", &fakeRunner{exitCode: 64, stderr: "pandoc: unknown reader"}, core.KindConversionFailed, "unknown reader"},
		{"missing output", &fakeRunner{}, core.KindConversionFailed, "not created"},
		{"timeout", &fakeRunner{err: fmt.Errorf("pandoc: %w", core.ErrTimeout)}, core.KindConversionTimeout, "timed out"},
		{"start failure", &fakeRunner{err: errors.New("exec: not found")}, core.KindConversionFailed, "pandoc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocxRenderer(tt.runner, "/opt/pandoc").Render(context.Background(), t.TempDir(), "<p>x</p>")
			if got := core.KindOf(err); got != tt.wantKind {
				t.Fatalf("kind = %q, want %q (err %v)", got, tt.wantKind, err)
			}
			if !strings.Contains(core.MessageOf(err), tt.wantMsg) {
				t.Fatalf("message %q does not mention %q", core.MessageOf(err), tt.wantMsg)
			}
		})
	}
}

func TestPDFRenderer_Args(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{output: []byte("%PDF-1.4\n")}
	data, err := NewPDFRenderer(runner, "").Render(context.Background(), dir, "<p>$x$</p>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("unexpected data %q", data)
	}
	want := []string{
		"--enable-local-file-access",
		"--javascript-delay", "2000",
		"--window-status", "onloadready",
		filepath.Join(dir, pdfInputName),
		filepath.Join(dir, pdfOutputName),
	}
	if runner.name != "wkhtmltopdf" || !slices.Equal(runner.args, want) {
		t.Fatalf("ran %q %q, want %q", runner.name, runner.args, want)
	}
	if !strings.Contains(runner.input, `<div id="wrapper">`) || !strings.Contains(runner.input, "<p>$x$</p>") {
		t.Fatalf("input was not wrapped: %q", runner.input)
	}
}

func TestPDFRenderer_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		wantKind core.ErrorKind // empty means success
	}{
		{"clean exit", &fakeRunner{output: []byte("%PDF-1.4")}, ""},
		{"non-zero exit with output", &fakeRunner{output: []byte("%PDF-1.4"), exitCode: 1, stderr: "Warning: failed to load"}, ""},
		{"non-zero exit without output", &fakeRunner{exitCode: 1, stderr: "Exit with code 1"}, core.KindConversionFailed},
		{"empty output file", &fakeRunner{output: []byte{}}, core.KindEmptyOutput},
		{"no output at all", &fakeRunner{}, core.KindEmptyOutput},
		{"timeout", &fakeRunner{err: fmt.Errorf("wkhtmltopdf: %w", core.ErrTimeout)}, core.KindConversionTimeout},
		{"cancelled", &fakeRunner{err: fmt.Errorf("running wkhtmltopdf: %w", context.Canceled)}, core.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := NewPDFRenderer(tt.runner, "").Render(context.Background(), t.TempDir(), "<p>x</p>")
			if tt.wantKind == "" {
				if err != nil || len(data) == 0 {
					t.Fatalf("expected success, got %d bytes, err %v", len(data), err)
				}
				return
			}
			if got := core.KindOf(err); got != tt.wantKind {
				t.Fatalf("kind = %q, want %q (err %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestPDFRenderer_FailureCarriesStderr(t *testing.T) {
	runner := &fakeRunner{exitCode: 1, stderr: "QXcbConnection: could not connect"}
	_, err := NewPDFRenderer(runner, "").Render(context.Background(), t.TempDir(), "<p>x</p>")
	if !strings.Contains(core.MessageOf(err), "QXcbConnection") {
		t.Fatalf("message should carry stderr: %q", core.MessageOf(err))
	}
}

func TestNativePDFRenderer(t *testing.T) {
	html := `<h1>Notes</h1>
<p>Energy is <strong>conserved</strong>.</p>
<ul><li>first</li><li>second</li></ul>
<pre><code>go test ./...</code></pre>
<table><tr><th>n</th><th>square</th></tr><tr><td>2</td><td>4</td></tr></table>
<p>Ünïcödé text</p>`
	r := NewNativePDFRenderer(normalize.New(), "")
	data, err := r.Render(context.Background(), t.TempDir(), html)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
	if r.Extension() != "pdf" || r.MediaType() != core.MediaTypePDF {
		t.Fatalf("unexpected extension/media type")
	}
}

// dejavuSans is a UTF-8 font present on most Linux hosts.
const dejavuSans = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"

func TestNativePDFRenderer_UTF8Font(t *testing.T) {
	if _, err := os.Stat(dejavuSans); err != nil {
		t.Skipf("font not available: %v", err)
	}
	html := `<h2>数学笔记</h2>
<p>Greek α β γ and ∫ x dx ≤ ∞</p>
<table><tr><th>符号</th><th>含义</th></tr><tr><td>∑</td><td>求和</td></tr></table>
<pre><code>λ := 1</code></pre>`

	data, lost, err := layoutMarkdown(mustMarkdown(t, html), dejavuSans)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if lost != 0 {
		t.Errorf("lost %d characters with a UTF-8 font", lost)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Fatalf("output is not a PDF")
	}

	r := NewNativePDFRenderer(normalize.New(), dejavuSans)
	if _, err := r.Render(context.Background(), t.TempDir(), html); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestNativePDFRenderer_CountsUnencodableText(t *testing.T) {
	_, lost, err := layoutMarkdown("# 数学\n\nGreek α and café\n\n| ∑ | x |\n| --- | --- |\n| 1 | 2 |\n", "")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	// 数, 学, α and ∑ have no cp1252 glyph; é does.
	if lost != 4 {
		t.Fatalf("lost = %d, want 4", lost)
	}

	_, lost, err = layoutMarkdown("Ünïcödé • text", "")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if lost != 0 {
		t.Fatalf("lost = %d for cp1252 text, want 0", lost)
	}
}

func TestNativePDFRenderer_BadFont(t *testing.T) {
	notFont := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(notFont, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	for name, path := range map[string]string{
		"missing": filepath.Join(t.TempDir(), "absent.ttf"),
		"not ttf": notFont,
	} {
		t.Run(name, func(t *testing.T) {
			r := NewNativePDFRenderer(normalize.New(), path)
			_, err := r.Render(context.Background(), t.TempDir(), "<p>x</p>")
			if core.KindOf(err) != core.KindConversionFailed {
				t.Fatalf("kind = %q, want %q (err %v)", core.KindOf(err), core.KindConversionFailed, err)
			}
		})
	}
}

func mustMarkdown(t *testing.T, html string) string {
	t.Helper()
	normalized, err := normalize.New().Normalize(html)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	md, err := normalize.ToMarkdown(normalized)
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	return md
}

func TestSplitTableRow(t *testing.T) {
	got := splitTableRow("| a | b c |  |")
	want := []string{"a", "b c", ""}
	if !slices.Equal(got, want) {
		t.Fatalf("splitTableRow = %q, want %q", got, want)
	}
	if !tableDelimRow.MatchString("| --- | :---: |") {
		t.Fatalf("delimiter row not recognized")
	}
	if tableDelimRow.MatchString("| 1 | 2 |") {
		t.Fatalf("data row treated as delimiter")
	}
}

func TestCleanInlineMarkdown(t *testing.T) {
	tests := map[string]string{
		"**bold** text":          "bold text",
		"see [docs](http://x.y)": "see docs",
		"run `go vet`":           "run go vet",
		`cost \$5`:               "cost $5",
	}
	for in, want := range tests {
		if got := cleanInlineMarkdown(in); got != want {
			t.Errorf("cleanInlineMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
