// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package config resolves the build tool's settings from defaults, a .env
// file in the project root, the environment and command-line flags, in
// increasing precedence. Nothing depends on the working directory.
package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Root        string `env:"USBIDS_ROOT"`
	DumpPath    string `env:"USBIDS_SQL"`
	OutputPath  string `env:"USBIDS_OUT"`
	MinSize     int64  `env:"USBIDS_MIN_SIZE" envDefault:"1024"`
	KeepOnError bool   `env:"USBIDS_KEEP_ON_ERROR"`
	Check       bool   `env:"USBIDS_INTEGRITY_CHECK" envDefault:"true"`
	LogLevel    string `env:"USBIDS_LOG_LEVEL" envDefault:"info"`
	Version     bool   `env:"-"` // print version and exit (flag only)
}

// Load builds a Config from the environment and args (without the program
// name). Flag parse errors are returned; usage text goes to output.
func Load(args []string, output io.Writer) (*Config, error) {
	// a missing .env is not an error
	_ = godotenv.Load(dotenvPath())

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}

	if cfg.Root == "" {
		cfg.Root = ProjectRoot
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	cfg.Root = root
	if cfg.DumpPath == "" {
		cfg.DumpPath = DefaultDumpPath(cfg.Root)
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath(cfg.Root)
	}

	// environment values become the flag defaults, so flags win
	fs := flag.NewFlagSet("usbidsdb", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.DumpPath, "sql", cfg.DumpPath, "path to usbids.sql")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "output sqlite path")
	fs.Int64Var(&cfg.MinSize, "min-size", cfg.MinSize, "smallest acceptable output size in bytes")
	fs.BoolVar(&cfg.KeepOnError, "keep-on-error", cfg.KeepOnError, "keep the partial database if the dump fails")
	fs.BoolVar(&cfg.Check, "check", cfg.Check, "run PRAGMA quick_check on the result")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Version, "version", cfg.Version, "show version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if cfg.DumpPath, err = filepath.Abs(cfg.DumpPath); err != nil {
		return nil, fmt.Errorf("sql: %w", err)
	}
	if cfg.OutputPath, err = filepath.Abs(cfg.OutputPath); err != nil {
		return nil, fmt.Errorf("out: %w", err)
	}
	if cfg.MinSize < 0 {
		return nil, fmt.Errorf("min-size: must not be negative")
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// dotenvPath returns the .env file in USBIDS_ROOT, or in ProjectRoot.
func dotenvPath() string {
	root := os.Getenv("USBIDS_ROOT")
	if root == "" {
		root = ProjectRoot
	}
	return filepath.Join(root, ".env")
}

// Level returns the slog level named by LogLevel.
func (cfg *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return 0, fmt.Errorf("log-level: %w", err)
	}
	return level, nil
}
