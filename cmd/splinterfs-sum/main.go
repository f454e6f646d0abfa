// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"

	"github.com/splinterfs/splinterfs/lib/config"
	"github.com/splinterfs/splinterfs/lib/logging"
	"github.com/splinterfs/splinterfs/lib/process"
	"github.com/splinterfs/splinterfs/lib/splitview"
	"github.com/splinterfs/splinterfs/lib/version"
)

const usageLine = "Usage: splinterfs-sum [--split-size SIZE] [--max-splits N] <source_file>"

// readSize is the buffer handed to each Handler.Read, matching the
// largest read the kernel issues through a FUSE mount by default.
const readSize = 128 << 10

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	splitSize := config.ByteSize(splitview.DefaultSplitSize)
	var (
		maxSplits   int
		logLevel    string
		showVersion bool
		showHelp    bool
	)

	flagSet := pflag.NewFlagSet("splinterfs-sum", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.Var(&splitSize, "split-size", "bytes per split, e.g. 100048576, 100MB, 64MiB")
	flagSet.IntVar(&maxSplits, "max-splits", splitview.DefaultMaxSplits, "maximum number of splits")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		return process.Usage("%v\n%s", err, usageLine)
	}
	if showHelp {
		fmt.Fprintf(stdout, "splinterfs-sum: checksum every split of a file as splinterfs would serve it.\n\n%s\n\nFlags:\n%s", usageLine, flagSet.FlagUsages())
		return nil
	}
	if showVersion {
		version.Fprint(stdout, "splinterfs-sum")
		return nil
	}
	if flagSet.NArg() != 1 {
		return process.Usage("%s", usageLine)
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return process.Usage("%v", err)
	}
	logger, err := logging.New(logging.Options{Level: level, Format: logging.FormatText})
	if err != nil {
		return err
	}

	handler, err := splitview.NewHandler(splitview.Layout{
		SourcePath: flagSet.Arg(0),
		SplitSize:  int64(splitSize),
		MaxSplits:  maxSplits,
	}, splitview.Options{Logger: logger})
	if err != nil {
		return process.Usage("%v", err)
	}

	return sum(handler, stdout)
}

// sum prints the BLAKE3 digest of every split, then compares the
// digest of the splits concatenated in index order with the digest of
// the source read directly.
func sum(handler *splitview.Handler, stdout io.Writer) error {
	listing, err := handler.ListDirectory(splitview.RootPath)
	if err != nil {
		return err
	}

	concatenated := blake3.New()
	buffer := make([]byte, readSize)
	var total int64

	for index := range listing.Len() {
		name := listing.Name(index)
		path := "/" + name
		if err := handler.Open(path, unix.O_RDONLY); err != nil {
			return err
		}

		split := blake3.New()
		var offset int64
		for {
			count, err := handler.Read(path, buffer, offset)
			if err != nil {
				return err
			}
			if count == 0 {
				break
			}
			split.Write(buffer[:count])
			concatenated.Write(buffer[:count])
			offset += int64(count)
		}
		total += offset

		fmt.Fprintf(stdout, "%x  %10s  %s\n", split.Sum(nil), humanize.IBytes(uint64(offset)), name)
	}

	sourceDigest, sourceSize, err := digestFile(handler.Layout().SourcePath)
	if err != nil {
		return err
	}
	concatenatedDigest := concatenated.Sum(nil)

	fmt.Fprintf(stdout, "%x  %10s  (%d splits concatenated)\n", concatenatedDigest, humanize.IBytes(uint64(total)), listing.Len())
	fmt.Fprintf(stdout, "%x  %10s  (source)\n", sourceDigest, humanize.IBytes(uint64(sourceSize)))

	if total != sourceSize || !bytes.Equal(concatenatedDigest, sourceDigest) {
		return errors.New("concatenated splits do not match the source")
	}
	fmt.Fprintln(stdout, "OK")
	return nil
}

func digestFile(path string) ([]byte, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	hasher := blake3.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return hasher.Sum(nil), size, nil
}
