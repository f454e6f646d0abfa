// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuse mounts a [splitview.Handler] as a read-only FUSE
// filesystem.
//
// The mount is a single directory. Listing it yields one regular file
// per split of the source ("0_movie.mkv", "1_movie.mkv", ...). Every
// kernel request is turned back into a synthetic path ("/" + name) and
// answered by the handler, so split sizes and contents always reflect
// the source as of the request, subject only to the kernel entry and
// attribute timeouts.
//
// # Read Path
//
// Lookup and Getattr stat the source. Open grants read-only access and
// creates no file handle. Each Read opens the source, seeks to
// index*SplitSize+offset, and performs one bounded read that stops at
// the split boundary. Short reads are returned as-is; the kernel
// issues further reads at advanced offsets.
//
// # Write Path
//
// Not implemented. Opening a split for writing fails with EACCES.
// Create, Mkdir, Unlink, and the other mutating operations are not
// implemented by any node and fail with the go-fuse default.
package fuse
