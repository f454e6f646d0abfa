// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that select their own exit code.
type ExitCoder interface {
	ExitCode() int
}

// UsageError reports bad command-line usage. Its message is printed
// as-is and the process exits with status 2.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// ExitCode returns 2, the conventional status for usage errors.
func (e *UsageError) ExitCode() int { return 2 }

// Usage creates a UsageError with a formatted message.
func Usage(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// Fatal writes err to stderr and exits. Use it in main() for errors
// from run() where the structured logger may not be initialized.
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes err to w and returns the exit code for it: the
// ExitCode of the first ExitCoder in the chain, or 1. Usage errors
// are written without the "error: " prefix.
func Report(w io.Writer, err error) int {
	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(w, usage.Message)
		return usage.ExitCode()
	}

	fmt.Fprintf(w, "error: %v\n", err)
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
