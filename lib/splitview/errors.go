// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package splitview

import (
	"errors"
	"fmt"
	"syscall"
)

// Kind classifies handler errors so that transports can answer with
// the signal a normal filesystem would give, without parsing error
// text.
type Kind int

const (
	// KindNotFound means the path is neither "/" nor the name of a
	// split that currently exists.
	KindNotFound Kind = iota + 1

	// KindPermissionDenied means an open asked for write access.
	KindPermissionDenied

	// KindIO means a stat, open, seek, or read against the source
	// file failed. The OS error is kept in the chain so the caller
	// sees the same errno as direct access to the source.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindIO:
		return "i/o error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every Handler operation that fails.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Op is the handler operation: getattr, readdir, open, or read.
	Op string

	// Path is the synthetic path the operation was called with.
	Path string

	// Err is the underlying cause. For KindIO it carries the OS
	// error (usually an *fs.PathError wrapping a syscall.Errno).
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying cause so errors.Is and errors.As can
// reach the OS error.
func (e *Error) Unwrap() error { return e.Err }

// Errno maps the error to the errno a transport should answer with.
// I/O errors keep the errno of the source operation; EIO is used only
// when the cause carries none.
func (e *Error) Errno() syscall.Errno {
	switch e.Kind {
	case KindNotFound:
		return syscall.ENOENT
	case KindPermissionDenied:
		return syscall.EACCES
	}
	var errno syscall.Errno
	if errors.As(e.Err, &errno) && errno != 0 {
		return errno
	}
	return syscall.EIO
}

func notFound(op, path string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Path: path, Err: err}
}

func permissionDenied(op, path string, err error) *Error {
	return &Error{Kind: KindPermissionDenied, Op: op, Path: path, Err: err}
}

func ioError(op, path string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or zero
// if there is none.
func KindOf(err error) Kind {
	var handlerErr *Error
	if errors.As(err, &handlerErr) {
		return handlerErr.Kind
	}
	return 0
}

// ErrnoOf converts any error to an errno: 0 for nil, the mapped errno
// for an *Error, the errno found in the chain otherwise, and EIO as
// the last resort.
func ErrnoOf(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var handlerErr *Error
	if errors.As(err, &handlerErr) {
		return handlerErr.Errno()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return errno
	}
	return syscall.EIO
}
