// Package convert orchestrates a single conversion request: validation,
// normalization, a private scratch directory and the format's renderer.
package convert

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/gaurav-prasanna/chatdoc/core/output"
	"github.com/sirupsen/logrus"
)

// Request is one conversion job.
type Request struct {
	HTML string
	// Filename is the desired name without extension. Nil means unset.
	Filename *string
	Format   string
}

// Result is a finished document.
type Result struct {
	Data      []byte
	MediaType string
	// Filename is the sanitized name including its extension.
	Filename string
}

// CleanFunc strips vendor noise from HTML without rewriting its content.
type CleanFunc func(html string) (string, error)

// Service converts chat exports into documents.
type Service struct {
	normalizer core.Normalizer
	renderers  map[core.Format]core.Renderer
	clean      CleanFunc
	tempDir    string
	slots      chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithTempDir sets the parent directory for per-request scratch space.
// Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *Service) { s.tempDir = dir }
}

// WithPDFPreclean runs clean over PDF input before it is rendered.
func WithPDFPreclean(clean CleanFunc) Option {
	return func(s *Service) { s.clean = clean }
}

// WithMaxConcurrent bounds in-flight conversions. Zero or less means no bound.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.slots = make(chan struct{}, n)
		} else {
			s.slots = nil
		}
	}
}

// New creates a Service. docx input is normalized before rendering; pdf
// input is passed to the pdf renderer as received.
func New(normalizer core.Normalizer, docx, pdf core.Renderer, opts ...Option) *Service {
	s := &Service{
		normalizer: normalizer,
		renderers: map[core.Format]core.Renderer{
			core.FormatDOCX: docx,
			core.FormatPDF:  pdf,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks a request in order: format, size, then HTML shape.
func Validate(format, html string) (core.Format, error) {
	f, ok := core.ParseFormat(format)
	if !ok {
		return "", core.Errorf(core.KindInvalidFormat, "Output format must be 'docx' or 'pdf'")
	}
	if size := len(html); size > core.MaxHTMLSize {
		return "", core.Errorf(core.KindTooLarge,
			"HTML size (%d bytes) exceeds limit (%d bytes)", size, core.MaxHTMLSize)
	}
	if html == "" {
		return "", core.Errorf(core.KindInvalidHTML, "HTML content is required")
	}
	if !strings.Contains(html, "<") || !strings.Contains(html, ">") {
		return "", core.Errorf(core.KindInvalidHTML, "Invalid HTML format")
	}
	return f, nil
}

// Convert validates req and produces the requested document. Errors are
// *core.Error values; anything unexpected is reported as internal_error.
func (s *Service) Convert(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("conversion panicked")
			result, err = nil, core.Errorf(core.KindInternal, "Unexpected error: %v", r)
		}
	}()

	format, err := Validate(req.Format, req.HTML)
	if err != nil {
		return nil, err
	}
	renderer := s.renderers[format]
	if renderer == nil {
		return nil, core.Errorf(core.KindInternal, "no renderer configured for %s", format)
	}

	name := ""
	if req.Filename != nil {
		name = *req.Filename
	}
	name = output.SanitizeFilename(name)

	log := logrus.WithFields(logrus.Fields{
		"format":     format,
		"html_bytes": len(req.HTML),
		"filename":   name,
	})

	input, err := s.prepare(format, req.HTML)
	if err != nil {
		return nil, s.fail(log, err)
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, s.fail(log, err)
	}
	defer release()

	workDir, err := os.MkdirTemp(s.tempDir, "chatdoc-*")
	if err != nil {
		return nil, s.fail(log, core.Wrap(core.KindInternal, err, "Unexpected error: creating work directory: %v", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			log.WithError(rmErr).Warn("removing work directory")
		}
	}()

	start := time.Now()
	data, err := renderer.Render(ctx, workDir, input)
	if err != nil {
		return nil, s.fail(log, asConversionError(err))
	}

	log.WithFields(logrus.Fields{
		"output_bytes": len(data),
		"duration":     time.Since(start).Round(time.Millisecond),
	}).Info("conversion finished")

	return &Result{
		Data:      data,
		MediaType: renderer.MediaType(),
		Filename:  name + "." + renderer.Extension(),
	}, nil
}

// prepare produces the renderer input for format.
func (s *Service) prepare(format core.Format, html string) (string, error) {
	switch {
	case format == core.FormatDOCX:
		out, err := s.normalizer.Normalize(html)
		if err != nil {
			return "", core.Wrap(core.KindConversionFailed, err, "Failed to convert HTML to DOCX: %v", err)
		}
		return out, nil
	case s.clean != nil:
		out, err := s.clean(html)
		if err != nil {
			return "", core.Wrap(core.KindConversionFailed, err, "Failed to convert HTML to PDF: %v", err)
		}
		return out, nil
	default:
		return html, nil
	}
}

// acquire takes a conversion slot, waiting no longer than ctx allows.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.slots == nil {
		return func() {}, nil
	}
	select {
	case s.slots <- struct{}{}:
		return func() { <-s.slots }, nil
	case <-ctx.Done():
		return nil, core.Wrap(core.KindInternal, ctx.Err(), "Conversion cancelled while waiting for a free slot")
	}
}

func (s *Service) fail(log *logrus.Entry, err error) error {
	log.WithFields(logrus.Fields{
		"kind":  core.KindOf(err),
		"error": core.MessageOf(err),
	}).Warn("conversion failed")
	return err
}

// asConversionError keeps typed errors and wraps anything else as internal.
func asConversionError(err error) error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return err
	}
	return core.Wrap(core.KindInternal, err, "Unexpected error: %v", err)
}
