// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package splitview

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"github.com/splinterfs/splinterfs/lib/splitname"
)

// RootPath is the only directory in the view.
const RootPath = "/"

const (
	opGetattr = "getattr"
	opReaddir = "readdir"
	opOpen    = "open"
	opRead    = "read"
)

// Options configures a Handler.
type Options struct {
	// Source performs stat and open on the source file. If nil, the
	// os package is used.
	Source SourceFS

	// Logger receives per-operation debug messages and source I/O
	// failures. If nil, errors are logged to stderr.
	Logger *slog.Logger
}

// Handler implements the four filesystem operations of the split view
// on synthetic paths. It holds no mutable state: every call re-stats
// the source, and every read opens and closes its own handle, so a
// Handler is safe for concurrent use and observes changes to the
// source without a restart.
type Handler struct {
	layout Layout
	base   string
	source SourceFS
	logger *slog.Logger
}

// NewHandler validates layout and returns a Handler serving it.
func NewHandler(layout Layout, options Options) (*Handler, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid split layout: %w", err)
	}
	if options.Source == nil {
		options.Source = osSource{}
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}
	return &Handler{
		layout: layout,
		base:   splitname.Base(layout.SourcePath),
		source: options.Source,
		logger: options.Logger,
	}, nil
}

// Layout returns the layout the handler serves.
func (h *Handler) Layout() Layout { return h.layout }

// Base returns the base name every split is named after.
func (h *Handler) Base() string { return h.base }

// Attributes is the metadata of the root directory or one split.
type Attributes struct {
	// Mode holds the file type and permission bits (S_IFDIR|0755 or
	// S_IFREG|0444).
	Mode uint32

	// Nlink is 2 for the root directory and 1 for splits.
	Nlink uint32

	// Size is the split length in bytes. Zero for the root.
	Size int64

	// ModTime is the source file's modification time. Zero for the
	// root.
	ModTime time.Time
}

// IsDir reports whether the attributes describe the root directory.
func (a Attributes) IsDir() bool {
	return a.Mode&unix.S_IFMT == unix.S_IFDIR
}

// GetAttributes returns the attributes of "/" or of a split path.
// Split sizes come from a fresh stat of the source.
func (h *Handler) GetAttributes(path string) (Attributes, error) {
	h.logger.Debug("getattr", "path", path)

	if path == RootPath {
		return Attributes{Mode: unix.S_IFDIR | 0o755, Nlink: 2}, nil
	}

	index, _, err := splitname.Decode(path)
	if err != nil {
		return Attributes{}, notFound(opGetattr, path, err)
	}

	info, err := h.source.Stat(h.layout.SourcePath)
	if err != nil {
		h.logger.Error("stat failed for source",
			"source", h.layout.SourcePath,
			"error", err,
		)
		return Attributes{}, ioError(opGetattr, path, err)
	}

	span, ok := h.layout.Span(index, info.Size())
	if !ok {
		return Attributes{}, notFound(opGetattr, path, h.outOfRange(index, info.Size()))
	}

	return Attributes{
		Mode:    unix.S_IFREG | 0o444,
		Nlink:   1,
		Size:    span.Length,
		ModTime: info.ModTime(),
	}, nil
}

// Listing is the content of the root directory at the moment it was
// listed.
type Listing struct {
	base  string
	count int
}

// Len returns the number of split entries, excluding "." and "..".
func (l *Listing) Len() int { return l.count }

// Name returns the entry name of split index. It does not check the
// index against Len.
func (l *Listing) Name(index int) string { return splitname.Encode(index, l.base) }

// Names yields ".", "..", then every split name in ascending index
// order. Names are formatted as they are yielded, and the sequence can
// be ranged over any number of times.
func (l *Listing) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(".") || !yield("..") {
			return
		}
		for index := range l.count {
			if !yield(l.Name(index)) {
				return
			}
		}
	}
}

// ListDirectory lists "/". Any other path is NotFound.
func (h *Handler) ListDirectory(path string) (*Listing, error) {
	h.logger.Debug("readdir", "path", path)

	if path != RootPath {
		return nil, notFound(opReaddir, path, nil)
	}

	info, err := h.source.Stat(h.layout.SourcePath)
	if err != nil {
		h.logger.Error("stat failed for source",
			"source", h.layout.SourcePath,
			"error", err,
		)
		return nil, ioError(opReaddir, path, err)
	}

	count := h.layout.Count(info.Size())
	h.logger.Debug("listing splits",
		"source_size", humanize.IBytes(uint64(info.Size())),
		"splits", count,
	)
	return &Listing{base: h.base, count: count}, nil
}

// Open checks whether path may be opened with flags. Only read-only
// access is granted. No state is created; every Read resolves the
// path again.
func (h *Handler) Open(path string, flags uint32) error {
	h.logger.Debug("open", "path", path, "flags", flags)

	if _, _, err := splitname.Decode(path); err != nil {
		return notFound(opOpen, path, err)
	}

	if flags&unix.O_ACCMODE != unix.O_RDONLY {
		h.logger.Debug("write access denied", "path", path, "flags", flags)
		return permissionDenied(opOpen, path, fmt.Errorf("splits are read-only"))
	}
	return nil
}

// Read copies bytes of split path starting at offset within the split
// into dest and returns the number copied. The read is one bounded
// read against the source and never crosses the end of the split; a
// short count, including zero at or past the split's end, is not an
// error.
func (h *Handler) Read(path string, dest []byte, offset int64) (int, error) {
	h.logger.Debug("read", "path", path, "size", len(dest), "offset", offset)

	index, _, err := splitname.Decode(path)
	if err != nil {
		return 0, notFound(opRead, path, err)
	}
	if offset < 0 {
		return 0, ioError(opRead, path, fmt.Errorf("negative offset %d: %w", offset, syscall.EINVAL))
	}

	file, err := h.source.Open(h.layout.SourcePath)
	if err != nil {
		h.logger.Error("opening source failed",
			"source", h.layout.SourcePath,
			"error", err,
		)
		return 0, ioError(opRead, path, err)
	}
	defer h.closeSource(file)

	info, err := file.Stat()
	if err != nil {
		h.logger.Error("stat failed for open source",
			"source", h.layout.SourcePath,
			"error", err,
		)
		return 0, ioError(opRead, path, err)
	}

	span, ok := h.layout.Span(index, info.Size())
	if !ok {
		return 0, notFound(opRead, path, h.outOfRange(index, info.Size()))
	}
	if offset >= span.Length {
		return 0, nil
	}

	position := span.Offset + offset
	want := min(int64(len(dest)), span.End()-position)
	if _, err := file.Seek(position, io.SeekStart); err != nil {
		h.logger.Error("seek failed",
			"source", h.layout.SourcePath,
			"offset", position,
			"error", err,
		)
		return 0, ioError(opRead, path, err)
	}

	count, err := file.Read(dest[:want])
	if err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error("read failed",
			"source", h.layout.SourcePath,
			"offset", position,
			"error", err,
		)
		return 0, ioError(opRead, path, err)
	}
	return count, nil
}

func (h *Handler) closeSource(file SourceFile) {
	if err := file.Close(); err != nil {
		h.logger.Warn("closing source failed",
			"source", h.layout.SourcePath,
			"error", err,
		)
	}
}

func (h *Handler) outOfRange(index int, sourceSize int64) error {
	return fmt.Errorf("split %d does not exist: source has %d splits", index, h.layout.Count(sourceSize))
}
