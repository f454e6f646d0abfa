// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// fakeT records Fatalf instead of stopping the goroutine.
type fakeT struct {
	message string
}

func (f *fakeT) Helper() {}

func (f *fakeT) Fatalf(format string, args ...any) {
	f.message = fmt.Sprintf(format, args...)
}

func TestWriteSource(t *testing.T) {
	path := WriteSource(t, "movie.mkv", []byte("frames"))
	if !strings.HasSuffix(path, "/movie.mkv") {
		t.Errorf("path %q does not end in the requested name", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "frames" {
		t.Errorf("content = %q", data)
	}
}

func TestPattern(t *testing.T) {
	content := Pattern(70000)
	if len(content) != 70000 {
		t.Fatalf("len = %d", len(content))
	}
	if !bytes.Equal(Pattern(1000), content[:1000]) {
		t.Error("Pattern is not deterministic")
	}
	// Windows 256 bytes apart differ, so an off-by-one-block read is
	// visible.
	if bytes.Equal(content[0:16], content[256:272]) {
		t.Error("pattern repeats at a 256-byte stride")
	}
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("RequireReceive = %d", got)
	}
}

func TestRequireClosedTimesOut(t *testing.T) {
	var fake fakeT
	RequireClosed(&fake, make(chan struct{}), time.Millisecond, "waiting for %s", "mount")
	if !strings.Contains(fake.message, "waiting for mount") {
		t.Errorf("message = %q", fake.message)
	}

	closed := make(chan struct{})
	close(closed)
	fake = fakeT{}
	RequireClosed(&fake, closed, time.Second)
	if fake.message != "" {
		t.Errorf("closed channel reported failure: %q", fake.message)
	}
}
