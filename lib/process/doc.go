// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for splinterfs binaries.
//
// Errors returned from run() are reported to stderr before the
// structured logger may exist, and the process exits with the code
// the error carries ([ExitCoder]) or 1.
package process
