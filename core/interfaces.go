// Package core defines the pipeline interfaces for chatdoc.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"time"
)

const (
	// MaxHTMLSize is the largest accepted input, in encoded bytes.
	MaxHTMLSize = 50 * 1024 * 1024
	// ProcessTimeout bounds every external converter invocation.
	ProcessTimeout = 30 * time.Second
)

// Format is a requested output document format.
type Format string

// Supported output formats.
const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Media types returned alongside converted documents.
const (
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypePDF  = "application/pdf"
)

// ParseFormat returns the Format named by s. Matching is exact.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatDOCX, FormatPDF:
		return Format(s), true
	default:
		return "", false
	}
}

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// RunResult is the outcome of a finished external process.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Diagnostics returns the captured output most useful in an error message.
func (r *RunResult) Diagnostics() string {
	if r == nil {
		return ""
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Fetcher retrieves a raw HTML export from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor isolates the conversation from a full chat page.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer rewrites chat-export HTML into converter-friendly HTML.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts HTML into a final document.
// workDir is a scratch directory owned by the caller for the duration of the call.
type Renderer interface {
	Render(ctx context.Context, workDir string, html string) ([]byte, error)
	// Extension returns the file extension without the dot (e.g. "docx").
	Extension() string
	MediaType() string
}

// Runner executes an external program and waits for it to finish.
// A process that ran to completion returns a nil error whatever its exit code.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (*RunResult, error)
}
