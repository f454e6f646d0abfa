// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteSource writes content to a file called name in a fresh
// temporary directory and returns its path. The directory is removed
// when the test completes.
func WriteSource(t testing.TB, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing source %s: %v", path, err)
	}
	return path
}

// Pattern returns size bytes of deterministic content. Byte i mixes
// the low and high bits of i, so the sequence only repeats every
// 64 KiB.
func Pattern(size int) []byte {
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i ^ (i >> 8))
	}
	return content
}
