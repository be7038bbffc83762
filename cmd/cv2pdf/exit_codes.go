package main

import (
	"errors"

	"github.com/alnah/go-cv2pdf"
	"github.com/alnah/go-cv2pdf/internal/config"
)

// Exit codes for the cv2pdf CLI.
// Follows Unix conventions: 0=success, 1=failure, 2=usage.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // Missing input, malformed table, I/O or rendering error
	ExitUsage   = 2 // Invalid flags, config, or environment
)

// ErrUsage marks command-line mistakes: bad flags or extra arguments.
var ErrUsage = errors.New("invalid usage")

// exitCodeFor returns the exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, cv2pdf.ErrUnknownBackend) {
		return ExitUsage
	}

	return ExitGeneral
}
