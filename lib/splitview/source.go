// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package splitview

import (
	"io"
	"io/fs"
	"os"
)

// SourceFile is an open handle on the source file. *os.File satisfies
// it.
type SourceFile interface {
	io.Reader
	io.Seeker
	io.Closer
	Stat() (fs.FileInfo, error)
}

// SourceFS is the minimal set of operations the handler performs on
// the source file. Tests substitute implementations that inject
// failures.
type SourceFS interface {
	Stat(path string) (fs.FileInfo, error)
	Open(path string) (SourceFile, error)
}

type osSource struct{}

func (osSource) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (osSource) Open(path string) (SourceFile, error) {
	file, err := os.Open(path)
	if err != nil {
		// Avoid returning a typed nil inside the interface.
		return nil, err
	}
	return file, nil
}
