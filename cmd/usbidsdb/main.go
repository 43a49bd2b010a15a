// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Command usbidsdb builds assets/db/usbids.sqlite from assets/db_src/usbids.sql.
//
//	go run ./cmd/usbidsdb                          # default paths under the repo root
//	go run ./cmd/usbidsdb -sql dump.sql -out x.sqlite
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mdhender/usbidsdb"
	"github.com/mdhender/usbidsdb/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the tool and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	errorColor := color.New(color.FgRed, color.Bold)
	okColor := color.New(color.FgGreen)

	cfg, err := config.Load(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = errorColor.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if cfg.Version {
		fmt.Fprintln(stdout, usbidsdb.Version())
		return 0
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := usbidsdb.Build(ctx, usbidsdb.Config{
		DumpPath:           cfg.DumpPath,
		OutputPath:         cfg.OutputPath,
		MinSize:            cfg.MinSize,
		KeepOnError:        cfg.KeepOnError,
		SkipIntegrityCheck: !cfg.Check,
		Logger:             logger,
	})
	if err != nil {
		logger.Debug("build failed", "error", err)
		_, _ = errorColor.Fprintln(stderr, exitMessage(err))
		return 1
	}

	for _, t := range res.Tables {
		logger.Debug("table", "name", t.Name, "rows", t.Rows)
	}
	_, _ = okColor.Fprintf(stdout, "[OK] Generated %s (%d bytes)\n", res.Path, res.Size)
	return 0
}

// exitMessage renders err as the single line printed before a failed exit.
func exitMessage(err error) string {
	var be *usbidsdb.BuildError
	if errors.As(err, &be) {
		switch {
		case errors.Is(err, usbidsdb.ErrMissingDump):
			return fmt.Sprintf("%v: %s", usbidsdb.ErrMissingDump, be.Path)
		case errors.Is(err, usbidsdb.ErrGenerationFailed):
			return fmt.Sprintf("%v: %s", usbidsdb.ErrGenerationFailed, be.Path)
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
