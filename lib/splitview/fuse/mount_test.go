// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/splinterfs/splinterfs/lib/splitname"
	"github.com/splinterfs/splinterfs/lib/splitview"
	"github.com/splinterfs/splinterfs/lib/testutil"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXY"

// fuseAvailable checks whether /dev/fuse is accessible and a
// fusermount helper is installed. Tests that need a real FUSE mount
// call this and skip if either is missing.
func fuseAvailable(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("skipping: /dev/fuse not available")
	}
	if !fusermountInstalled() {
		t.Skip("skipping: neither fusermount3 nor fusermount is on PATH")
	}
}

func fusermountInstalled() bool {
	for _, name := range []string{"fusermount3", "fusermount"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func newHandler(t *testing.T, content []byte, splitSize int64) (*splitview.Handler, string) {
	t.Helper()
	source := testutil.WriteSource(t, "f", content)
	handler, err := splitview.NewHandler(splitview.Layout{
		SourcePath: source,
		SplitSize:  splitSize,
		MaxSplits:  splitview.DefaultMaxSplits,
	}, splitview.Options{})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return handler, source
}

// testMount mounts a split view of content and returns the
// mountpoint and source path. The mount is unmounted when the test
// ends.
func testMount(t *testing.T, content []byte, splitSize int64) (mountpoint, source string) {
	t.Helper()
	fuseAvailable(t)

	handler, source := newHandler(t, content, splitSize)
	mountpoint = filepath.Join(t.TempDir(), "mount", "nested")

	server, err := Mount(Options{
		Mountpoint: mountpoint,
		Handler:    handler,
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	served := make(chan struct{})
	go func() {
		server.Wait()
		close(served)
	}()

	t.Cleanup(func() {
		if err := server.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
		testutil.RequireClosed(t, served, 10*time.Second, "server shutdown after unmount")
	})

	return mountpoint, source
}

type readResult struct {
	data []byte
	err  error
}

// readFile reads path through the mount, failing the test instead of
// hanging if the server stops answering.
func readFile(t *testing.T, path string) []byte {
	t.Helper()
	results := make(chan readResult, 1)
	go func() {
		data, err := os.ReadFile(path)
		results <- readResult{data, err}
	}()
	result := testutil.RequireReceive(t, results, 10*time.Second, "reading %s", path)
	if result.err != nil {
		t.Fatalf("ReadFile(%s): %v", path, result.err)
	}
	return result.data
}

func TestSplitDirStream(t *testing.T) {
	handler, _ := newHandler(t, []byte(alphabet), 10)
	listing, err := handler.ListDirectory("/")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}

	stream := &splitDirStream{listing: listing}
	var names []string
	for stream.HasNext() {
		entry, errno := stream.Next()
		if errno != 0 {
			t.Fatalf("Next: %v", errno)
		}
		if entry.Mode != syscall.S_IFREG {
			t.Errorf("entry %s mode = %o, want regular file", entry.Name, entry.Mode)
		}
		names = append(names, entry.Name)
	}
	stream.Close()

	if diff := cmp.Diff([]string{"0_f", "1_f", "2_f"}, names); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
	if _, errno := stream.Next(); errno != syscall.EINVAL {
		t.Errorf("Next past end = %v, want EINVAL", errno)
	}
}

func TestFillAttr(t *testing.T) {
	handler, _ := newHandler(t, []byte(alphabet), 10)

	root, err := handler.GetAttributes("/")
	if err != nil {
		t.Fatalf("GetAttributes(/): %v", err)
	}
	var rootAttr fuse.Attr
	fillAttr(&rootAttr, root)
	if rootAttr.Mode != syscall.S_IFDIR|0o755 || rootAttr.Nlink != 2 || rootAttr.Blocks != 0 {
		t.Errorf("root attr = mode %o nlink %d blocks %d", rootAttr.Mode, rootAttr.Nlink, rootAttr.Blocks)
	}

	split, err := handler.GetAttributes("/2_f")
	if err != nil {
		t.Fatalf("GetAttributes(/2_f): %v", err)
	}
	var splitAttr fuse.Attr
	fillAttr(&splitAttr, split)
	if splitAttr.Size != 5 || splitAttr.Blocks != 1 || splitAttr.Mtime == 0 {
		t.Errorf("split attr = size %d blocks %d mtime %d", splitAttr.Size, splitAttr.Blocks, splitAttr.Mtime)
	}
}

func TestMountRequiresHandler(t *testing.T) {
	if _, err := Mount(Options{Mountpoint: t.TempDir()}); err == nil {
		t.Error("Mount without handler succeeded")
	}
	handler, _ := newHandler(t, nil, 10)
	if _, err := Mount(Options{Handler: handler}); err == nil {
		t.Error("Mount without mountpoint succeeded")
	}
}

func TestMountListsSplits(t *testing.T) {
	mountpoint, _ := testMount(t, []byte(alphabet), 10)

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if diff := cmp.Diff([]string{"0_f", "1_f", "2_f"}, names); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(mountpoint)
	if err != nil {
		t.Fatalf("Stat(mountpoint): %v", err)
	}
	if !info.IsDir() || info.Mode().Perm() != 0o755 {
		t.Errorf("root mode = %v, want drwxr-xr-x", info.Mode())
	}
}

func TestMountReadsSplits(t *testing.T) {
	mountpoint, _ := testMount(t, []byte(alphabet), 10)

	want := map[string]string{
		"0_f": "ABCDEFGHIJ",
		"1_f": "KLMNOPQRST",
		"2_f": "UVWXY",
	}
	for name, content := range want {
		path := filepath.Join(mountpoint, name)

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat(%s): %v", name, err)
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("%s size = %d, want %d", name, info.Size(), len(content))
		}
		if info.Mode().Perm() != 0o444 {
			t.Errorf("%s permissions = %v, want 0444", name, info.Mode().Perm())
		}

		got := readFile(t, path)
		if string(got) != content {
			t.Errorf("%s = %q, want %q", name, got, content)
		}
	}

	file, err := os.Open(filepath.Join(mountpoint, "1_f"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()
	buffer := make([]byte, 4)
	if _, err := file.ReadAt(buffer, 2); err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("ReadAt: %v", err)
	}
	if want := alphabet[12:16]; string(buffer) != want {
		t.Errorf("ReadAt(1_f, 2) = %q, want %q", buffer, want)
	}
}

func TestMountConcatenationMatchesSource(t *testing.T) {
	content := testutil.Pattern(300*1024 + 17)
	mountpoint, _ := testMount(t, content, 64*1024)

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("got %d splits, want 5", len(entries))
	}

	var joined []byte
	for index := range len(entries) {
		data := readFile(t, filepath.Join(mountpoint, splitname.Encode(index, "f")))
		joined = append(joined, data...)
	}
	if !bytes.Equal(joined, content) {
		t.Error("concatenated splits differ from source")
	}
}

func TestMountRejectsWrites(t *testing.T) {
	mountpoint, _ := testMount(t, []byte(alphabet), 10)

	_, err := os.OpenFile(filepath.Join(mountpoint, "0_f"), os.O_WRONLY, 0)
	if !errors.Is(err, syscall.EACCES) {
		t.Errorf("OpenFile(O_WRONLY) = %v, want EACCES", err)
	}

	_, err = os.OpenFile(filepath.Join(mountpoint, "0_f"), os.O_RDWR, 0)
	if !errors.Is(err, syscall.EACCES) {
		t.Errorf("OpenFile(O_RDWR) = %v, want EACCES", err)
	}
}

func TestMountUnknownNames(t *testing.T) {
	mountpoint, _ := testMount(t, []byte(alphabet), 10)

	for _, name := range []string{"abc_f", "5noUnderscore", "3_f"} {
		_, err := os.Stat(filepath.Join(mountpoint, name))
		if !os.IsNotExist(err) {
			t.Errorf("Stat(%s) = %v, want ENOENT", name, err)
		}
	}
}

func TestMountEmptySource(t *testing.T) {
	mountpoint, _ := testMount(t, nil, 10)

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("empty source lists %d entries, want 0", len(entries))
	}
}
