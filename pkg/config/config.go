package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrNotFound is returned when no configuration file exists.
var ErrNotFound = errors.New("configuration file not found")

// Output formats accepted in output.format.
var formats = []string{"text", "markdown", "json", "toon"}

// Config holds all configuration options for phprune.
type Config struct {
	// Source tree and symbol lists
	Input InputConfig `koanf:"input" toml:"input"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Report and removal toggles
	Output OutputConfig `koanf:"output" toml:"output"`
}

// InputConfig describes what is analyzed.
type InputConfig struct {
	RootPath         string   `koanf:"root_path" toml:"root_path"`
	Entrypoints      []string `koanf:"entrypoints" toml:"entrypoints"`
	FilePattern      string   `koanf:"file_pattern" toml:"file_pattern"`
	NamespacePrefix  string   `koanf:"namespace_prefix" toml:"namespace_prefix"`
	Ignored          []string `koanf:"ignored" toml:"ignored"`
	IgnoredFunc      []string `koanf:"ignored_func" toml:"ignored_func"`
	IgnoredFuncNames []string `koanf:"ignored_func_names" toml:"ignored_func_names"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls reports and removal.
type OutputConfig struct {
	Format            string   `koanf:"format" toml:"format"` // text, markdown, json, toon
	Color             bool     `koanf:"color" toml:"color"`
	PrintInvalid      bool     `koanf:"print_invalid" toml:"print_invalid"`
	PrintFunctions    bool     `koanf:"print_functions" toml:"print_functions"`
	PrintCycles       bool     `koanf:"print_cycles" toml:"print_cycles"`
	PrintSpecific     bool     `koanf:"print_specific" toml:"print_specific"`
	ToScan            []string `koanf:"to_scan" toml:"to_scan"`
	IncludeDeprecated bool     `koanf:"include_deprecated" toml:"include_deprecated"`
	OutputFile        string   `koanf:"output_file" toml:"output_file"`
	RemoveFiles       bool     `koanf:"remove_files" toml:"remove_files"`
	RemoveFunc        bool     `koanf:"remove_func" toml:"remove_func"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			RootPath:         ".",
			Entrypoints:      []string{"public"},
			FilePattern:      `.+\.php$`,
			Ignored:          []string{},
			IgnoredFunc:      []string{},
			IgnoredFuncNames: []string{},
		},
		Exclude: ExcludeConfig{
			Dirs:      []string{"vendor", "node_modules", ".git"},
			Patterns:  []string{},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format:            "text",
			Color:             true,
			PrintInvalid:      true,
			PrintFunctions:    true,
			ToScan:            []string{},
			IncludeDeprecated: true,
		},
	}
}

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dirs []string
}

// WithPath loads the given file instead of searching for one.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs replaces the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// LoadConfig finds, loads and validates the configuration. A missing file is
// an error wrapping ErrNotFound.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dirs: []string{".", ".phprune"}}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = Find(o.dirs...)
		if path == "" {
			return nil, fmt.Errorf("searched %s: %w", strings.Join(o.dirs, ", "), ErrNotFound)
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// Find returns the first standard config file in dirs, or "".
func Find(dirs ...string) string {
	configNames := []string{
		"phprune.toml",
		"phprune.yaml",
		"phprune.yml",
		"phprune.json",
		".phprune.toml",
		".phprune.yaml",
		".phprune.yml",
		".phprune.json",
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Load loads configuration from a file over the defaults. A relative
// root_path is resolved against the directory of the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if cfg.Input.RootPath != "" && !filepath.IsAbs(cfg.Input.RootPath) {
		cfg.Input.RootPath = filepath.Join(filepath.Dir(path), cfg.Input.RootPath)
	}
	return cfg, nil
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.Input.RootPath == "" {
		errs = append(errs, errors.New("input.root_path is required"))
	}
	if _, err := regexp.Compile(c.Input.FilePattern); err != nil {
		errs = append(errs, fmt.Errorf("input.file_pattern: %w", err))
	}
	if !ValidFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(formats, ", ")))
	}
	return errors.Join(errs...)
}

// ValidFormat reports whether name is a known output format.
func ValidFormat(name string) bool {
	for _, f := range formats {
		if f == name {
			return true
		}
	}
	return false
}

