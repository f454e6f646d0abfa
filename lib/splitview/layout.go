// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package splitview

import (
	"errors"
	"fmt"
)

const (
	// DefaultSplitSize is the number of source bytes per split when
	// no size is configured.
	DefaultSplitSize int64 = 100048576

	// DefaultMaxSplits caps the number of splits exposed regardless
	// of source size.
	DefaultMaxSplits = 1000
)

// Layout is the immutable description of how a source file is cut
// into splits. It is built once at startup and shared by every
// operation without locking.
type Layout struct {
	// SourcePath is the real file being split.
	SourcePath string

	// SplitSize is the number of bytes in every split but the last.
	SplitSize int64

	// MaxSplits is the ceiling on the number of splits exposed. Bytes
	// past MaxSplits*SplitSize are not reachable through the view.
	MaxSplits int
}

// Validate reports whether the layout can be served.
func (l Layout) Validate() error {
	var errs []error
	if l.SourcePath == "" {
		errs = append(errs, fmt.Errorf("source path is required"))
	}
	if l.SplitSize <= 0 {
		errs = append(errs, fmt.Errorf("split size must be positive, got %d", l.SplitSize))
	}
	if l.MaxSplits <= 0 {
		errs = append(errs, fmt.Errorf("max splits must be positive, got %d", l.MaxSplits))
	}
	return errors.Join(errs...)
}

// Count returns the number of splits a source of sourceSize bytes is
// presented as: ceil(sourceSize/SplitSize), clamped to MaxSplits.
func (l Layout) Count(sourceSize int64) int {
	if sourceSize <= 0 {
		return 0
	}
	count := sourceSize / l.SplitSize
	if sourceSize%l.SplitSize != 0 {
		count++
	}
	if count > int64(l.MaxSplits) {
		return l.MaxSplits
	}
	return int(count)
}

// Span returns the byte range split index covers in a source of
// sourceSize bytes. The boolean is false when index is outside
// [0, Count(sourceSize)).
func (l Layout) Span(index int, sourceSize int64) (Span, bool) {
	if index < 0 || index >= l.Count(sourceSize) {
		return Span{}, false
	}
	offset := int64(index) * l.SplitSize
	return Span{
		Index:  index,
		Offset: offset,
		Length: min(l.SplitSize, sourceSize-offset),
	}, true
}

// Span is the transient byte range of one split. It is computed per
// call from the current source size and never stored.
type Span struct {
	Index  int
	Offset int64
	Length int64
}

// End returns the source offset one past the last byte of the span.
func (s Span) End() int64 {
	return s.Offset + s.Length
}
