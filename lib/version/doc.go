// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for splinterfs
// binaries.
//
// The package-level variables [GitCommit], [GitDirty], [BuildTime], and
// [Version] are injected at build time with -ldflags -X, naming each as
// github.com/splinterfs/splinterfs/lib/version.<Variable>. They default
// to "unknown" and "0.1.0-dev" when not injected, which occurs during
// development builds and test runs.
//
// [Info] produces "0.1.0-dev (abc1234, 2026-02-10T...)", [Full] adds
// the Go version and GOOS/GOARCH, and [Print] writes the --version
// output for a named binary.
package version
