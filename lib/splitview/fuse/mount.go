// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/splinterfs/splinterfs/lib/splitname"
	"github.com/splinterfs/splinterfs/lib/splitview"
)

const (
	// DefaultFsName is the filesystem name shown in mount tables.
	DefaultFsName = "splinterfs"

	// DefaultEntryTimeout and DefaultAttrTimeout bound how long the
	// kernel trusts a lookup or attribute answer before asking again.
	// They are the only caching in the read path, so they also bound
	// how stale a split size can be after the source changes.
	DefaultEntryTimeout = 1 * time.Second
	DefaultAttrTimeout  = 1 * time.Second

	// DefaultNegativeTimeout is how long a failed lookup is cached.
	DefaultNegativeTimeout = 100 * time.Millisecond
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// Handler serves every filesystem request.
	Handler *splitview.Handler

	// FsName is the source name reported in the mount table. Empty
	// uses DefaultFsName.
	FsName string

	// EntryTimeout, AttrTimeout, and NegativeTimeout override the
	// kernel cache durations. Zero uses the defaults.
	EntryTimeout    time.Duration
	AttrTimeout     time.Duration
	NegativeTimeout time.Duration

	// AllowOther permits other users (including root) to access
	// the mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Debug logs every FUSE request and response.
	Debug bool

	// MountOptions are passed through to the kernel as -o options.
	MountOptions []string

	// Logger receives diagnostic messages. If nil, errors are
	// logged to stderr.
	Logger *slog.Logger
}

// Mount mounts the split view at the configured mountpoint. The
// caller must call Unmount on the returned Server when done. The
// mountpoint directory is created if it does not exist.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	if options.FsName == "" {
		options.FsName = DefaultFsName
	}
	if options.EntryTimeout == 0 {
		options.EntryTimeout = DefaultEntryTimeout
	}
	if options.AttrTimeout == 0 {
		options.AttrTimeout = DefaultAttrTimeout
	}
	if options.NegativeTimeout == 0 {
		options.NegativeTimeout = DefaultNegativeTimeout
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &rootNode{handler: options.Handler, logger: options.Logger}

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &options.EntryTimeout,
		AttrTimeout:     &options.AttrTimeout,
		NegativeTimeout: &options.NegativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     options.FsName,
			Name:       "splinterfs",
			AllowOther: options.AllowOther,
			Debug:      options.Debug,
			Options:    options.MountOptions,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	layout := options.Handler.Layout()
	options.Logger.Info("split view mounted",
		"mountpoint", options.Mountpoint,
		"source", layout.SourcePath,
		"split_name", options.Handler.Base(),
		"split_size", layout.SplitSize,
		"max_splits", layout.MaxSplits,
	)
	return server, nil
}

// rootNode is the only directory. Its children are the splits of the
// source, resolved by name on every lookup.
type rootNode struct {
	gofuse.Inode
	handler *splitview.Handler
	logger  *slog.Logger
}

var _ gofuse.InodeEmbedder = (*rootNode)(nil)
var _ gofuse.NodeGetattrer = (*rootNode)(nil)
var _ gofuse.NodeLookuper = (*rootNode)(nil)
var _ gofuse.NodeReaddirer = (*rootNode)(nil)

func (r *rootNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attributes, err := r.handler.GetAttributes(splitview.RootPath)
	if err != nil {
		return splitview.ErrnoOf(err)
	}
	fillAttr(&out.Attr, attributes)
	return 0
}

func (r *rootNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	path := splitview.RootPath + name

	attributes, err := r.handler.GetAttributes(path)
	if err != nil {
		r.logger.Debug("lookup failed", "path", path, "error", err)
		return nil, splitview.ErrnoOf(err)
	}

	// GetAttributes only succeeds for names that decode.
	index, _, _ := splitname.Decode(path)

	node := &splitNode{handler: r.handler, path: path}
	child := r.NewInode(ctx, node, gofuse.StableAttr{
		Mode: syscall.S_IFREG,
		// Inode 1 is the root.
		Ino: uint64(index) + 2,
	})
	fillAttr(&out.Attr, attributes)
	return child, 0
}

func (r *rootNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	listing, err := r.handler.ListDirectory(splitview.RootPath)
	if err != nil {
		return nil, splitview.ErrnoOf(err)
	}
	return &splitDirStream{listing: listing}, 0
}

// splitNode is one split. It keeps only its synthetic path; size and
// content are resolved against the source on every request.
type splitNode struct {
	gofuse.Inode
	handler *splitview.Handler
	path    string
}

var _ gofuse.InodeEmbedder = (*splitNode)(nil)
var _ gofuse.NodeGetattrer = (*splitNode)(nil)
var _ gofuse.NodeOpener = (*splitNode)(nil)
var _ gofuse.NodeReader = (*splitNode)(nil)

func (s *splitNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attributes, err := s.handler.GetAttributes(s.path)
	if err != nil {
		return splitview.ErrnoOf(err)
	}
	fillAttr(&out.Attr, attributes)
	return 0
}

func (s *splitNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if err := s.handler.Open(s.path, flags); err != nil {
		return nil, 0, splitview.ErrnoOf(err)
	}
	// No FOPEN_KEEP_CACHE: the source may change underneath us.
	return nil, 0, 0
}

func (s *splitNode) Read(ctx context.Context, f gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	count, err := s.handler.Read(s.path, dest, off)
	if err != nil {
		return nil, splitview.ErrnoOf(err)
	}
	return fuse.ReadResultData(dest[:count]), 0
}

func fillAttr(out *fuse.Attr, attributes splitview.Attributes) {
	out.Mode = attributes.Mode
	out.Nlink = attributes.Nlink
	out.Size = uint64(attributes.Size)
	if !attributes.IsDir() {
		out.Blocks = (out.Size + 511) / 512
	}
	out.Blksize = 65536
	if !attributes.ModTime.IsZero() {
		modified := attributes.ModTime
		out.SetTimes(&modified, &modified, &modified)
	}
}

// splitDirStream yields directory entries for a listing, formatting
// each name as it is requested. "." and ".." are not emitted.
type splitDirStream struct {
	listing *splitview.Listing
	index   int
}

func (s *splitDirStream) HasNext() bool {
	return s.index < s.listing.Len()
}

func (s *splitDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= s.listing.Len() {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := fuse.DirEntry{
		Name: s.listing.Name(s.index),
		Mode: syscall.S_IFREG,
		Ino:  uint64(s.index) + 2,
	}
	s.index++
	return entry, 0
}

func (s *splitDirStream) Close() {}
