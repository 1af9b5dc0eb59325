package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/gaurav-prasanna/chatdoc/core/normalize"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// unicodeFamily is the family name the configured TrueType font is
// registered under.
const unicodeFamily = "chatdoc"

var (
	orderedItem   = regexp.MustCompile(`^\d+\.\s`)
	italicSpan    = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	inlineLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
	tableDelimRow = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?$`)
)

// NativePDFRenderer lays out a document with gofpdf, without any external
// process. Math is kept as delimited TeX source.
//
// The core PDF fonts only cover cp1252. CJK, Greek and most math symbols
// need a UTF-8 TrueType font; without one those characters print as dots
// and a warning with their count is logged.
type NativePDFRenderer struct {
	normalizer core.Normalizer
	fontPath   string
}

// NewNativePDFRenderer creates a NativePDFRenderer. Input is normalized
// with n before it is projected to Markdown. fontPath names a TrueType
// font used for all text; empty selects the built-in cp1252 fonts.
func NewNativePDFRenderer(n core.Normalizer, fontPath string) *NativePDFRenderer {
	return &NativePDFRenderer{normalizer: n, fontPath: fontPath}
}

// Render normalizes html, converts it to Markdown and lays it out as PDF.
func (r *NativePDFRenderer) Render(ctx context.Context, workDir string, html string) ([]byte, error) {
	normalized, err := r.normalizer.Normalize(html)
	if err != nil {
		return nil, core.Wrap(core.KindConversionFailed, err, "Failed to normalize HTML: %v", err)
	}
	markdown, err := normalize.ToMarkdown(normalized)
	if err != nil {
		return nil, core.Wrap(core.KindConversionFailed, err, "Failed to convert HTML to PDF: %v", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, core.Wrap(core.KindInternal, err, "Conversion cancelled")
	}

	data, lost, err := layoutMarkdown(markdown, r.fontPath)
	if err != nil {
		return nil, core.Wrap(core.KindConversionFailed, err, "Failed to convert HTML to PDF: %v", err)
	}
	if lost > 0 {
		logrus.WithField("characters", lost).
			Warn("native PDF font cannot encode some characters; set native_font_path to a UTF-8 TrueType font")
	}
	if len(data) == 0 {
		return nil, core.Errorf(core.KindEmptyOutput, "PDF file is empty after conversion.")
	}
	return data, nil
}

// Extension returns the file extension for PDF output.
func (r *NativePDFRenderer) Extension() string {
	return string(core.FormatPDF)
}

// MediaType returns the PDF media type.
func (r *NativePDFRenderer) MediaType() string {
	return core.MediaTypePDF
}

// typeface holds the font families and text encoder for one document.
type typeface struct {
	sans string
	mono string
	tr   func(string) string
	// lost counts characters the encoder replaced.
	lost int
}

// newTypeface registers fontPath with pdf, or falls back to the core
// fonts with a cp1252 encoder that counts what it cannot map.
func newTypeface(pdf *gofpdf.Fpdf, fontPath string) (*typeface, error) {
	if fontPath == "" {
		cp := pdf.UnicodeTranslatorFromDescriptor("")
		tf := &typeface{sans: "Helvetica", mono: "Courier"}
		tf.tr = func(s string) string {
			tf.lost += countUnmappable(cp, s)
			return cp(s)
		}
		return tf, nil
	}

	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", fontPath, err)
	}
	if mtype := mimetype.Detect(data); !mtype.Is("font/ttf") {
		return nil, fmt.Errorf("font %s is %s, not a TrueType font", fontPath, mtype.String())
	}
	pdf.AddUTF8FontFromBytes(unicodeFamily, "", data)
	pdf.AddUTF8FontFromBytes(unicodeFamily, "B", data)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("loading font %s: %w", fontPath, err)
	}
	return &typeface{
		sans: unicodeFamily,
		mono: unicodeFamily,
		tr:   func(s string) string { return s },
	}, nil
}

// countUnmappable reports how many runes of s the encoder turns into its
// '.' placeholder.
func countUnmappable(tr func(string) string, s string) int {
	n := 0
	for _, r := range s {
		if r < 0x80 {
			continue
		}
		if tr(string(r)) == "." {
			n++
		}
	}
	return n
}

// layoutMarkdown renders Markdown line by line and returns the PDF bytes
// with the number of characters the font could not encode.
// Handles headings, paragraphs, code blocks, lists and pipe tables.
func layoutMarkdown(markdown, fontPath string) ([]byte, int, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tf, err := newTypeface(pdf, fontPath)
	if err != nil {
		return nil, 0, err
	}
	pdf.AddPage()
	tr := tf.tr

	lines := strings.Split(markdown, "\n")
	inCodeBlock := false
	var table [][]string

	flushTable := func() {
		if len(table) > 0 {
			renderTable(pdf, tf, table)
			table = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			flushTable()
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}

		if inCodeBlock {
			pdf.SetFont(tf.mono, "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
			continue
		}

		if strings.HasPrefix(trimmed, "|") {
			if !tableDelimRow.MatchString(trimmed) {
				table = append(table, splitTableRow(trimmed))
			}
			continue
		}
		flushTable()

		switch {
		case trimmed == "":
			pdf.Ln(3)
		case strings.HasPrefix(line, "#"):
			level := len(line) - len(strings.TrimLeft(line, "#"))
			renderHeading(pdf, tf, strings.TrimSpace(strings.TrimLeft(line, "# ")), level)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			pdf.SetFont(tf.sans, "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		case orderedItem.MatchString(trimmed):
			pdf.SetFont(tf.sans, "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		default:
			pdf.SetFont(tf.sans, "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}
	flushTable()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), tf.lost, nil
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, tf *typeface, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont(tf.sans, "B", size)
	pdf.MultiCell(0, size*0.6, tf.tr(cleanInlineMarkdown(text)), "", "L", false)
	pdf.Ln(2)
}

// renderTable draws rows as equal-width bordered cells. The first row is bold.
func renderTable(pdf *gofpdf.Fpdf, tf *typeface, rows [][]string) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := (pageWidth - left - right) / float64(cols)

	pdf.Ln(2)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		pdf.SetFont(tf.sans, style, 10)
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(row) {
				text = tf.tr(cleanInlineMarkdown(row[c]))
			}
			pdf.CellFormat(width, 6, text, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(6)
	}
	pdf.Ln(2)
}

// splitTableRow splits a Markdown pipe-table row into trimmed cells.
func splitTableRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicSpan.ReplaceAllString(text, " $1 ")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = inlineLink.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, `\$`, "$")
	return strings.TrimSpace(text)
}
