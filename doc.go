// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package usbidsdb builds the USB vendor/device identifier database from
// its plain-text SQL dump.
//
// A build is a one-shot, destructive operation:
//   - The dump is read in full and must be valid UTF-8
//   - Any existing output file and its -wal/-shm sidecars are removed
//   - A fresh database is created with bulk-load pragmas (no journal, no sync)
//   - The dump is executed as a single script
//   - The file is switched back to a rollback journal and optimized
//   - The result is checked for integrity and a minimum plausible size
//
// # Basic Usage
//
//	res, err := usbidsdb.Build(ctx, usbidsdb.Config{
//	    DumpPath:   "/abs/path/assets/db_src/usbids.sql",
//	    OutputPath: "/abs/path/assets/db/usbids.sqlite",
//	})
//	if errors.Is(err, usbidsdb.ErrMissingDump) {
//	    ...
//	}
//
// # Driver Support
//
// The engine is selected with build tags:
//   - modernc.org/sqlite (default, pure Go, no CGO)
//   - github.com/mattn/go-sqlite3 (CGO, use -tags mattn)
//
// Pragmas are applied with PRAGMA statements rather than DSN parameters,
// so both drivers share the same build path.
package usbidsdb
