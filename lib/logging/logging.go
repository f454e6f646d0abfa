// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the slog logger used by splinterfs binaries.
//
// Four formats are supported: json (one record per line, the format
// for supervised services), text (key=value, for people), syslog
// (text records sent to the local syslog daemon under the
// "splinterfs" tag), and auto, which picks text when the output is a
// terminal and json otherwise.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects the record encoding.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatSyslog Format = "syslog"
)

// SyslogTag identifies splinterfs records in the system log.
const SyslogTag = "splinterfs"

// Options configures New.
type Options struct {
	// Level is the minimum level logged.
	Level slog.Level

	// Format selects the encoding. Empty means FormatAuto.
	Format Format

	// Output receives records for every format but syslog. If nil,
	// os.Stderr is used.
	Output io.Writer
}

// New creates a logger and installs it as the slog default, so that
// code using slog.Info and friends gets the same handler.
func New(options Options) (*slog.Logger, error) {
	if options.Output == nil {
		options.Output = os.Stderr
	}
	if options.Format == "" {
		options.Format = FormatAuto
	}

	handlerOptions := &slog.HandlerOptions{Level: options.Level}

	var handler slog.Handler
	switch options.Format {
	case FormatAuto:
		if isTerminal(options.Output) {
			handler = slog.NewTextHandler(options.Output, handlerOptions)
		} else {
			handler = slog.NewJSONHandler(options.Output, handlerOptions)
		}
	case FormatJSON:
		handler = slog.NewJSONHandler(options.Output, handlerOptions)
	case FormatText:
		handler = slog.NewTextHandler(options.Output, handlerOptions)
	case FormatSyslog:
		writer, err := syslog.New(syslog.LOG_USER|syslog.LOG_INFO, SyslogTag)
		if err != nil {
			return nil, fmt.Errorf("connecting to syslog: %w", err)
		}
		handler = slog.NewTextHandler(writer, handlerOptions)
	default:
		return nil, fmt.Errorf("unknown log format %q", options.Format)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// ParseLevel converts debug, info, warn (or warning), and error to a
// slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
