// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Splinterfs mounts a read-only directory that presents one large
// source file as a sequence of fixed-size split files, 0_<name>,
// 1_<name>, and so on. Split contents are read from the source on
// demand and nothing is copied, so concatenating the splits in index
// order reproduces the source byte for byte.
//
// The source path and mountpoint are given as positional arguments or
// in a YAML config file (--config or SPLINTERFS_CONFIG). Flags override
// the file. FUSE options in the traditional "-o opt,opt" form may
// follow a "--".
//
// The process serves in the foreground until SIGINT or SIGTERM, then
// unmounts. Exit codes:
//
//	0  unmounted cleanly
//	1  startup failure (mount refused, bad config file)
//	2  bad arguments
package main
