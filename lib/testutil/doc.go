// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for splinterfs packages.
//
// [WriteSource] creates a source file in a per-test directory, and
// [Pattern] generates content in which no short run of bytes repeats
// at a nearby offset, so a read from the wrong offset cannot pass for
// the right one.
//
// [RequireReceive] and [RequireClosed] bound a wait on a channel with
// a timeout. FUSE tests go through the kernel, and a server that stops
// answering blocks the calling goroutine forever. Running the call in
// a goroutine and waiting with a timeout turns that hang into a test
// failure.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
