// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for splinterfs.
//
// Configuration is loaded from a single file specified by either the
// SPLINTERFS_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no fallback search.
// A config file is optional for the splinterfs binary: without one,
// [Default] is used and the source and mountpoint come from the
// command line.
//
// Split sizes are [ByteSize] values, written either as integers or as
// humanized sizes ("100MB", "64MiB"). The same type implements the
// flag value interface so --split-size accepts the same forms.
//
// Variable expansion is performed on the source and mountpoint after
// loading: ${HOME} and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with Split, Mount, Log
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Layout] -- the splitview.Layout to serve
package config
