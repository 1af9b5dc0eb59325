package cmd

import (
	"errors"
	"fmt"

	"github.com/gaurav-prasanna/chatdoc/core"
)

const (
	exitInternal     = 1
	exitInvalidInput = 2
)

// ErrorExitCode maps err to the process exit status.
func ErrorExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch core.KindOf(err) {
	case core.KindInvalidFormat, core.KindInvalidHTML, core.KindTooLarge:
		return exitInvalidInput
	default:
		return exitInternal
	}
}

// FormatError renders err as "Error [kind]: message".
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var ce *core.Error
	if errors.As(err, &ce) {
		return fmt.Sprintf("Error [%s]: %s", ce.Kind, core.MessageOf(err))
	}
	return fmt.Sprintf("Error: %v", err)
}
