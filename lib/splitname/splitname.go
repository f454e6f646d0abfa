// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package splitname parses and formats the synthetic split file names
// exposed by splinterfs.
//
// A split name is "<index>_<base>", where index is the zero-based
// decimal split number with no padding and base is the final path
// component of the source file, taken verbatim. Paths delivered by
// the filesystem transport carry a leading "/" ("/3_movie.mkv");
// directory entries do not ("3_movie.mkv").
//
// Only the first underscore is a delimiter, so base names may contain
// underscores of their own. Decoding is purely syntactic: whether the
// index names a split that exists depends on the current source size
// and is checked by the caller.
package splitname

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Separator divides the split index from the base name.
const Separator = "_"

// ErrMalformed is returned (wrapped) by Decode for any path that does
// not follow the split naming grammar.
var ErrMalformed = errors.New("malformed split name")

// Decode splits a transport path of the form "/<index>_<base>" into
// its index and base name.
func Decode(path string) (index int, base string, err error) {
	name, ok := strings.CutPrefix(path, "/")
	if !ok {
		return 0, "", fmt.Errorf("%w: %q has no leading slash", ErrMalformed, path)
	}

	prefix, base, found := strings.Cut(name, Separator)
	if !found {
		return 0, "", fmt.Errorf("%w: %q has no %q delimiter", ErrMalformed, path, Separator)
	}

	// strconv.Atoi accepts a leading sign; the grammar does not.
	if prefix == "" || prefix[0] == '+' || prefix[0] == '-' {
		return 0, "", fmt.Errorf("%w: %q has no split index", ErrMalformed, path)
	}
	index, err = strconv.Atoi(prefix)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q: %v", ErrMalformed, path, err)
	}

	return index, base, nil
}

// Encode formats a directory entry name for split index of base. The
// result has no leading slash.
func Encode(index int, base string) string {
	return strconv.Itoa(index) + Separator + base
}

// Base returns the base name splits of sourcePath are named after.
func Base(sourcePath string) string {
	return filepath.Base(sourcePath)
}
