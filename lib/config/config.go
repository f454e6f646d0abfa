// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/splinterfs/splinterfs/lib/splitview"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "SPLINTERFS_CONFIG"

// Config is the complete splinterfs configuration.
type Config struct {
	// Source is the file presented as splits.
	Source string `yaml:"source"`

	// Mountpoint is the directory the split view is mounted on. It
	// is created if absent.
	Mountpoint string `yaml:"mountpoint"`

	// Split configures how the source is cut.
	Split SplitConfig `yaml:"split"`

	// Mount configures the FUSE mount.
	Mount MountConfig `yaml:"mount"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`
}

// SplitConfig configures the split layout.
type SplitConfig struct {
	// Size is the number of bytes per split. Accepts a plain integer
	// or a humanized size ("100MB", "64MiB").
	// Default: 100048576
	Size ByteSize `yaml:"size"`

	// MaxSplits caps the number of splits exposed.
	// Default: 1000
	MaxSplits int `yaml:"max_splits"`
}

// MountConfig configures the FUSE mount.
type MountConfig struct {
	// FsName is the source name shown in the mount table.
	// Default: splinterfs
	FsName string `yaml:"fs_name"`

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other"`

	// Debug logs every FUSE request.
	Debug bool `yaml:"debug"`

	// EntryTimeout, AttrTimeout, and NegativeTimeout are the kernel
	// cache durations ("1s", "100ms").
	EntryTimeout    time.Duration `yaml:"entry_timeout"`
	AttrTimeout     time.Duration `yaml:"attr_timeout"`
	NegativeTimeout time.Duration `yaml:"negative_timeout"`

	// Options are passed through to the kernel as -o options.
	Options []string `yaml:"options"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is one of auto, json, text, syslog.
	// Default: auto
	Format string `yaml:"format"`
}

// LogLevels and LogFormats are the accepted values for LogConfig.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"auto", "json", "text", "syslog"}
)

// Default returns the default configuration. Source and Mountpoint
// are left empty; they normally come from the command line.
func Default() *Config {
	return &Config{
		Split: SplitConfig{
			Size:      ByteSize(splitview.DefaultSplitSize),
			MaxSplits: splitview.DefaultMaxSplits,
		},
		Mount: MountConfig{
			FsName:          "splinterfs",
			EntryTimeout:    1 * time.Second,
			AttrTimeout:     1 * time.Second,
			NegativeTimeout: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by SPLINTERFS_CONFIG.
// There is no search path: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your splinterfs.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of Default. Values
// absent from the file keep their defaults. ${HOME} and ${VAR:-default}
// are expanded in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Source = expandVars(c.Source, vars)
	c.Mountpoint = expandVars(c.Mountpoint, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Source == "" {
		errs = append(errs, fmt.Errorf("source is required"))
	}
	if c.Mountpoint == "" {
		errs = append(errs, fmt.Errorf("mountpoint is required"))
	}

	if c.Split.Size <= 0 {
		errs = append(errs, fmt.Errorf("split.size must be positive, got %d", c.Split.Size))
	}
	if c.Split.MaxSplits <= 0 {
		errs = append(errs, fmt.Errorf("split.max_splits must be positive, got %d", c.Split.MaxSplits))
	}

	if c.Mount.EntryTimeout < 0 || c.Mount.AttrTimeout < 0 || c.Mount.NegativeTimeout < 0 {
		errs = append(errs, fmt.Errorf("mount timeouts must not be negative"))
	}

	if !slices.Contains(LogLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", LogLevels))
	}
	if !slices.Contains(LogFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", LogFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Layout returns the split layout described by the configuration.
func (c *Config) Layout() splitview.Layout {
	return splitview.Layout{
		SourcePath: c.Source,
		SplitSize:  int64(c.Split.Size),
		MaxSplits:  c.Split.MaxSplits,
	}
}

// ByteSize is a byte count that reads from YAML and from command-line
// flags as either a plain integer or a humanized size.
type ByteSize int64

// ParseByteSize parses "100048576", "100MB", "64MiB", "1.5 GB", and
// similar forms.
func ParseByteSize(s string) (ByteSize, error) {
	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if size > math.MaxInt64 {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	return ByteSize(size), nil
}

// String formats the size in IEC units ("95 MiB").
func (b ByteSize) String() string {
	if b < 0 {
		return fmt.Sprintf("%d B", int64(b))
	}
	return humanize.IBytes(uint64(b))
}

// Set implements the flag value interface.
func (b *ByteSize) Set(s string) error {
	size, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// Type implements the pflag value interface.
func (b *ByteSize) Type() string { return "size" }

// UnmarshalYAML accepts an integer or a humanized size string.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", value.Line)
	}
	if value.Tag == "!!int" {
		var size int64
		if err := value.Decode(&size); err != nil {
			return err
		}
		*b = ByteSize(size)
		return nil
	}
	size, err := ParseByteSize(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*b = size
	return nil
}

// MarshalYAML writes the size as a plain integer.
func (b ByteSize) MarshalYAML() (any, error) {
	return int64(b), nil
}
