// Package render turns HTML into final documents.
// DOCX and PDF output are produced by external converters run through a
// core.Runner; the native PDF engine lays out Markdown with gofpdf.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/sirupsen/logrus"
)

// processError maps a Runner failure onto a conversion error.
func processError(tool string, res *core.RunResult, err error) error {
	switch {
	case errors.Is(err, core.ErrTimeout):
		msg := fmt.Sprintf("Conversion timed out after %s", core.ProcessTimeout)
		if d := res.Diagnostics(); d != "" {
			msg += ": " + d
		}
		return core.Wrap(core.KindConversionTimeout, err, "%s", msg)
	case errors.Is(err, context.Canceled):
		return core.Wrap(core.KindInternal, err, "Conversion cancelled")
	default:
		return core.Wrap(core.KindConversionFailed, err, "Failed to run %s: %v", tool, err)
	}
}

// writeInput stores the converter input in the scratch directory.
func writeInput(path, html string) error {
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		return core.Wrap(core.KindInternal, err, "writing converter input: %v", err)
	}
	return nil
}

// sniff logs a warning when data does not look like mediaType.
func sniff(data []byte, mediaType string) {
	mt := mimetype.Detect(data)
	if mt.Is(mediaType) {
		return
	}
	logrus.WithFields(logrus.Fields{
		"expected": mediaType,
		"detected": mt.String(),
		"bytes":    len(data),
	}).Warn("converter output has an unexpected media type")
}
