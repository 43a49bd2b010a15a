// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package usbidsdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultMinSize is the smallest output file accepted as a populated database.
const DefaultMinSize = 1024

var (
	// ErrMissingDump is returned when the SQL dump does not exist.
	ErrMissingDump = errors.New("Missing SQL dump")

	// ErrGenerationFailed is returned when the output fails validation.
	ErrGenerationFailed = errors.New("DB generation failed")
)

// BuildError records the step and path that caused a build to fail.
type BuildError struct {
	Op   string
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Config holds build options.
type Config struct {
	// DumpPath is the SQL dump to execute. Must be absolute.
	DumpPath string

	// OutputPath is the database file to (re)create. Must be absolute.
	// Missing parent directories are created.
	OutputPath string

	// MinSize is the smallest acceptable output size in bytes.
	// Default: DefaultMinSize.
	MinSize int64

	// KeepOnError preserves the partial output and its sidecars when the
	// dump fails to execute. By default they are removed.
	KeepOnError bool

	// SkipIntegrityCheck disables the PRAGMA quick_check on the result.
	SkipIntegrityCheck bool

	// Logger for operational logging. Uses slog.Default() if nil.
	Logger *slog.Logger
}

// defaults returns a copy of cfg with default values applied.
func (cfg Config) defaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MinSize == 0 {
		cfg.MinSize = DefaultMinSize
	}
	return cfg
}

// Result describes a successfully built database.
type Result struct {
	Path   string
	Size   int64
	Tables []Table
}

// Build materializes the database at cfg.OutputPath from the dump at
// cfg.DumpPath. Any existing output is replaced, never merged.
func Build(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.defaults()

	if err := validateDumpPath(cfg.DumpPath); err != nil {
		return nil, err
	}
	if err := validateOutputPath(cfg.OutputPath); err != nil {
		return nil, &BuildError{Op: "resolve", Path: cfg.OutputPath, Err: err}
	}
	cfg.Logger.Debug("resolved paths", "sql", cfg.DumpPath, "out", cfg.OutputPath)

	// read the dump before touching the output so a bad dump leaves the old file alone
	script, err := readDump(cfg.DumpPath)
	if err != nil {
		return nil, &BuildError{Op: "read", Path: cfg.DumpPath, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
		return nil, &BuildError{Op: "mkdir", Path: filepath.Dir(cfg.OutputPath), Err: err}
	}

	cfg.Logger.Debug("removing stale database", "path", cfg.OutputPath)
	if err := Delete(ctx, cfg.OutputPath); err != nil {
		return nil, &BuildError{Op: "delete", Path: cfg.OutputPath, Err: err}
	}

	if err := materialize(ctx, cfg, script); err != nil {
		if !cfg.KeepOnError {
			if derr := Delete(ctx, cfg.OutputPath); derr != nil {
				cfg.Logger.Warn("cleanup after failed build", "path", cfg.OutputPath, "error", derr)
			}
		} else {
			cfg.Logger.Warn("keeping partial database", "path", cfg.OutputPath)
		}
		return nil, &BuildError{Op: "materialize", Path: cfg.OutputPath, Err: err}
	}

	if !cfg.SkipIntegrityCheck {
		if err := quickCheck(ctx, cfg.OutputPath); err != nil {
			return nil, &BuildError{Op: "verify", Path: cfg.OutputPath, Err: fmt.Errorf("%w: %w", ErrGenerationFailed, err)}
		}
	}

	tables, err := Inspect(ctx, cfg.OutputPath)
	if err != nil {
		return nil, &BuildError{Op: "inspect", Path: cfg.OutputPath, Err: err}
	}

	if err := removeSidecars(cfg.OutputPath); err != nil {
		return nil, &BuildError{Op: "cleanup", Path: cfg.OutputPath, Err: err}
	}

	size, err := validateOutput(cfg.OutputPath, cfg.MinSize)
	if err != nil {
		return nil, &BuildError{Op: "validate", Path: cfg.OutputPath, Err: err}
	}

	cfg.Logger.Info("database built",
		"path", cfg.OutputPath,
		"size", humanize.Bytes(uint64(size)),
		"tables", len(tables))

	return &Result{Path: cfg.OutputPath, Size: size, Tables: tables}, nil
}

// Delete removes a database file and its WAL sidecar files.
// Stale sidecars are removed even when the main file is already gone.
// Returns nil if none of the files exist.
func Delete(ctx context.Context, path string) error {
	if isMemory(path) {
		return fmt.Errorf("cannot delete in-memory database")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s: database path must be absolute", path)
	}
	if isDirectory(path) {
		return fmt.Errorf("%s: path is a directory", path)
	}

	if err := removeFiles(path, "", "-wal", "-shm"); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}

	if fileExists(path) {
		return fmt.Errorf("%s: still exists after delete", path)
	}

	return nil
}

// removeSidecars removes the -wal and -shm files next to path.
func removeSidecars(path string) error {
	return removeFiles(path, "-wal", "-shm")
}

// removeFiles removes path+suffix for each suffix, reporting the first error.
func removeFiles(path string, suffixes ...string) error {
	var firstErr error
	for _, suffix := range suffixes {
		name := path + suffix
		if !fileExists(name) {
			continue
		}
		if !isRegularFile(name) {
			err := fmt.Errorf("%s: not a regular file", name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// validateDumpPath checks that the dump exists. It has no side effects.
func validateDumpPath(path string) error {
	if !filepath.IsAbs(path) {
		return &BuildError{Op: "resolve", Path: path, Err: fmt.Errorf("dump path must be absolute")}
	}
	if !isRegularFile(path) {
		return &BuildError{Op: "resolve", Path: path, Err: ErrMissingDump}
	}
	return nil
}

// validateOutputPath checks that a path is usable as the output database.
func validateOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if isMemory(path) {
		return fmt.Errorf("output must be a file, not an in-memory database")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("output path must be absolute")
	}
	if isDirectory(path) {
		return fmt.Errorf("path is a directory")
	}
	return nil
}

// validateOutput returns the size of the output file, or ErrGenerationFailed
// if it is missing or smaller than minSize.
func validateOutput(path string, minSize int64) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: not a regular file", ErrGenerationFailed)
	}
	if info.Size() < minSize {
		return info.Size(), fmt.Errorf("%w: %d bytes is below the %d byte minimum", ErrGenerationFailed, info.Size(), minSize)
	}
	return info.Size(), nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// File system helpers

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() || info.IsDir()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
