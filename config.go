package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// config collects every setting of the kitty command. Values come from, in
// increasing precedence: defaultConfig, the YAML config file, and any flag
// given explicitly on the command line.
type config struct {
	Prompt     string        `yaml:"prompt"`
	History    string        `yaml:"history"`
	NoHistory  bool          `yaml:"no_history"`
	DepthLimit int           `yaml:"depth_limit"`
	Timeout    time.Duration `yaml:"timeout"`
	Trace      bool          `yaml:"trace"`
}

const defaultDepthLimit = 10000

func defaultConfig() config {
	return config{
		Prompt:     "kitty> ",
		History:    defaultHistoryPath(),
		DepthLimit: defaultDepthLimit,
	}
}

func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "kitty", "config.yaml")
}

func defaultHistoryPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "kitty", "history.db")
}

// load merges the YAML file at path over cfg. A missing file is only an error
// when required; an empty file changes nothing.
func (cfg *config) load(path string, required bool) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return cfg.decode(f, path)
}

func (cfg *config) decode(r io.Reader, name string) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", name, err)
	}
	if cfg.DepthLimit < 0 {
		return fmt.Errorf("config: %s: depth_limit must not be negative", name)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("config: %s: timeout must not be negative", name)
	}
	return nil
}

// cliFlags holds the command line as parsed. Config valued flags land in set,
// and are only copied over a loaded config if they were given explicitly.
type cliFlags struct {
	fs *flag.FlagSet

	configPath string
	lsp        bool
	files      []string

	set config
}

func parseFlags(name string, args []string, output io.Writer) (*cliFlags, error) {
	cf := &cliFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := cf.fs
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %v [options] [script ...]\n", name)
		fs.PrintDefaults()
	}

	def := defaultConfig()
	fs.StringVar(&cf.configPath, "config", "", "config file (default "+defaultConfigPath()+")")
	fs.BoolVar(&cf.lsp, "lsp", false, "run a language server on stdin/stdout")
	fs.StringVar(&cf.set.Prompt, "prompt", def.Prompt, "interactive prompt")
	fs.StringVar(&cf.set.History, "history", def.History, "command history database")
	fs.BoolVar(&cf.set.NoHistory, "no-history", false, "disable command history")
	fs.IntVar(&cf.set.DepthLimit, "depth-limit", def.DepthLimit, "maximum evaluation nesting depth; 0 for no limit")
	fs.DurationVar(&cf.set.Timeout, "timeout", 0, "time limit for evaluating each line; 0 for none")
	fs.BoolVar(&cf.set.Trace, "trace", false, "enable trace logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cf.files = fs.Args()
	return cf, nil
}

// config loads the effective configuration: defaults, then the config file,
// then explicitly given flags.
func (cf *cliFlags) config() (config, error) {
	cfg := defaultConfig()
	path, required := cf.configPath, true
	if path == "" {
		path, required = defaultConfigPath(), false
	}
	if err := cfg.load(path, required); err != nil {
		return cfg, err
	}
	cf.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "prompt":
			cfg.Prompt = cf.set.Prompt
		case "history":
			cfg.History = cf.set.History
		case "no-history":
			cfg.NoHistory = cf.set.NoHistory
		case "depth-limit":
			cfg.DepthLimit = cf.set.DepthLimit
		case "timeout":
			cfg.Timeout = cf.set.Timeout
		case "trace":
			cfg.Trace = cf.set.Trace
		}
	})
	return cfg, nil
}
