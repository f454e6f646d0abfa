// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/splinterfs/splinterfs/lib/config"
	"github.com/splinterfs/splinterfs/lib/logging"
	"github.com/splinterfs/splinterfs/lib/process"
	"github.com/splinterfs/splinterfs/lib/splitview"
	splitfuse "github.com/splinterfs/splinterfs/lib/splitview/fuse"
	"github.com/splinterfs/splinterfs/lib/version"
)

const usageLine = "Usage: splinterfs [flags] <source_file> <mountpoint> [-- FUSE options]"

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

// invocation is the outcome of command-line parsing.
type invocation struct {
	cfg         *config.Config
	showHelp    bool
	showVersion bool
	flagSet     *pflag.FlagSet
}

func run(args []string) error {
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}
	if inv.showHelp {
		printHelp(os.Stderr, inv.flagSet)
		return nil
	}
	if inv.showVersion {
		version.Print("splinterfs")
		return nil
	}

	cfg := inv.cfg
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: logging.Format(cfg.Log.Format),
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	handler, err := splitview.NewHandler(cfg.Layout(), splitview.Options{Logger: logger})
	if err != nil {
		return err
	}
	logSource(logger, cfg)

	server, err := splitfuse.Mount(splitfuse.Options{
		Mountpoint:      cfg.Mountpoint,
		Handler:         handler,
		FsName:          cfg.Mount.FsName,
		EntryTimeout:    cfg.Mount.EntryTimeout,
		AttrTimeout:     cfg.Mount.AttrTimeout,
		NegativeTimeout: cfg.Mount.NegativeTimeout,
		AllowOther:      cfg.Mount.AllowOther,
		Debug:           cfg.Mount.Debug,
		MountOptions:    cfg.Mount.Options,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Unmount on signal. An external "fusermount -u" ends Wait
	// without a signal, in which case there is nothing to undo.
	served := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("signal received, unmounting", "mountpoint", cfg.Mountpoint)
			if err := server.Unmount(); err != nil {
				logger.Error("unmount failed", "mountpoint", cfg.Mountpoint, "error", err)
			}
		case <-served:
		}
	}()

	server.Wait()
	close(served)
	logger.Info("split view unmounted", "mountpoint", cfg.Mountpoint)
	return nil
}

// parseArgs resolves configuration in increasing precedence: built-in
// defaults, the config file (--config or SPLINTERFS_CONFIG), flags,
// then the positional source and mountpoint. Arguments after "--" are
// FUSE options in the traditional form (-o opt,opt and -d).
func parseArgs(args []string) (*invocation, error) {
	var (
		configPath   string
		splitSize    config.ByteSize
		maxSplits    int
		allowOther   bool
		debug        bool
		logLevel     string
		logFormat    string
		mountOptions []string
		showVersion  bool
		showHelp     bool
	)

	flagSet := pflag.NewFlagSet("splinterfs", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&configPath, "config", "", "YAML config file (default: $"+config.EnvironmentVariable+" if set)")
	flagSet.Var(&splitSize, "split-size", "bytes per split, e.g. 100048576, 100MB, 64MiB")
	flagSet.IntVar(&maxSplits, "max-splits", 0, "maximum number of splits exposed")
	flagSet.BoolVar(&allowOther, "allow-other", false, "allow other users to access the mount")
	flagSet.BoolVar(&debug, "debug", false, "log every FUSE request")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&logFormat, "log-format", "", "log format: auto, json, text, syslog")
	flagSet.StringSliceVarP(&mountOptions, "options", "o", nil, "comma-separated FUSE mount options")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return &invocation{showHelp: true, flagSet: flagSet}, nil
		}
		return nil, process.Usage("%v\n%s", err, usageLine)
	}
	if showHelp || showVersion {
		return &invocation{showHelp: showHelp, showVersion: showVersion, flagSet: flagSet}, nil
	}

	positional := flagSet.Args()
	var passthrough []string
	if dash := flagSet.ArgsLenAtDash(); dash >= 0 {
		positional, passthrough = positional[:dash], positional[dash:]
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	switch len(positional) {
	case 2:
		cfg.Source, cfg.Mountpoint = positional[0], positional[1]
	case 0:
		if cfg.Source == "" || cfg.Mountpoint == "" {
			return nil, process.Usage("%s", usageLine)
		}
	default:
		return nil, process.Usage("expected <source_file> and <mountpoint>, got %d arguments\n%s", len(positional), usageLine)
	}

	if flagSet.Changed("split-size") {
		cfg.Split.Size = splitSize
	}
	if flagSet.Changed("max-splits") {
		cfg.Split.MaxSplits = maxSplits
	}
	if flagSet.Changed("allow-other") {
		cfg.Mount.AllowOther = allowOther
	}
	if flagSet.Changed("debug") {
		cfg.Mount.Debug = debug
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flagSet.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	cfg.Mount.Options = append(cfg.Mount.Options, mountOptions...)

	extraOptions, passthroughDebug, err := parsePassthrough(passthrough)
	if err != nil {
		return nil, err
	}
	cfg.Mount.Options = append(cfg.Mount.Options, extraOptions...)
	cfg.Mount.Debug = cfg.Mount.Debug || passthroughDebug

	if err := cfg.Validate(); err != nil {
		return nil, process.Usage("invalid configuration:\n%v", err)
	}

	return &invocation{cfg: cfg, flagSet: flagSet}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// parsePassthrough interprets FUSE command-line options given after
// "--": "-o a,b" and "-oa,b" add mount options, "-d" enables request
// logging, and "-f"/"-s" are accepted for compatibility since the
// filesystem always runs in the foreground and is safe to serve from
// many goroutines.
func parsePassthrough(args []string) (options []string, debug bool, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-o":
			if i+1 >= len(args) {
				return nil, false, process.Usage("-o requires an argument\n%s", usageLine)
			}
			i++
			options = append(options, splitOptions(args[i])...)
		case strings.HasPrefix(arg, "-o"):
			options = append(options, splitOptions(arg[2:])...)
		case arg == "-d" || arg == "--debug":
			debug = true
		case arg == "-f" || arg == "-s":
		default:
			return nil, false, process.Usage("unsupported FUSE option %q\n%s", arg, usageLine)
		}
	}
	return options, debug, nil
}

func splitOptions(list string) []string {
	var options []string
	for option := range strings.SplitSeq(list, ",") {
		if option = strings.TrimSpace(option); option != "" {
			options = append(options, option)
		}
	}
	return options
}

func logSource(logger *slog.Logger, cfg *config.Config) {
	layout := cfg.Layout()
	info, err := os.Stat(layout.SourcePath)
	if err != nil {
		logger.Warn("source is not accessible yet; splits will appear once it is",
			"source", layout.SourcePath,
			"error", err,
		)
		return
	}
	logger.Info("serving source",
		"source", layout.SourcePath,
		"size", humanize.IBytes(uint64(info.Size())),
		"split_size", cfg.Split.Size.String(),
		"splits", layout.Count(info.Size()),
	)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `splinterfs: present one large file as a directory of read-only splits.

Each split "<index>_<name>" is a fixed-size byte range of the source,
read on demand. Nothing is copied. Split sizes follow the source as it
changes.

%s

Flags:
%s
FUSE options after "--":
  -o opt[,opt...]   mount options (allow_other, default_permissions, ...)
  -d                log every FUSE request
  -f, -s            accepted and ignored

Examples:
  splinterfs movie.mkv /mnt/movie
  splinterfs --split-size 4GiB backup.tar /mnt/backup -- -o allow_other
  splinterfs --config /etc/splinterfs.yaml
`, usageLine, flagSet.FlagUsages())
}
