// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package splitview presents one large source file as a flat directory
// of fixed-size, read-only splits.
//
// Each split is a byte range of the source named "<index>_<base>"
// (see package splitname). Nothing is copied and nothing is cached:
// split count and sizes are derived from a stat of the source on every
// call, and reads translate (split index, in-split offset) into a seek
// and one bounded read on a handle opened for that call alone.
//
// [Handler] implements the four operations a filesystem transport
// needs (attribute lookup, directory listing, open, read) on synthetic
// paths. Failures are returned as [*Error] with a closed [Kind]
// (NotFound, PermissionDenied, IO) and map to errnos through
// [ErrnoOf]. The FUSE binding lives in the fuse subpackage.
//
// A split index that decodes but lies beyond the current split count
// is NotFound, as is any path other than "/" and split names.
package splitview
