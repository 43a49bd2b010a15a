// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package usbidsdb

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readDump reads the whole dump as UTF-8 text.
func readDump(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("dump is not valid UTF-8")
	}
	return string(data), nil
}

// materialize creates the database at cfg.OutputPath and executes script
// against it. The handle is closed on every return path.
func materialize(ctx context.Context, cfg Config, script string) (err error) {
	db, err := sql.Open(driverName, buildDSN(cfg.OutputPath, false))
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	// pragmas are per-connection, so everything runs on one pinned connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("conn: %w", err)
	}
	defer conn.Close()

	if err := applyPragmas(ctx, conn, bulkLoadPragmas, cfg.Logger); err != nil {
		return fmt.Errorf("bulk-load pragmas: %w", err)
	}

	if strings.TrimSpace(script) == "" {
		cfg.Logger.Warn("dump is empty, nothing to execute", "path", cfg.DumpPath)
	} else {
		cfg.Logger.Info("executing dump", "path", cfg.DumpPath, "bytes", len(script))
		if err := execScript(ctx, conn, script); err != nil {
			return fmt.Errorf("exec %s: %w", cfg.DumpPath, err)
		}
	}

	if err := applyPragmas(ctx, conn, finalPragmas, cfg.Logger); err != nil {
		return fmt.Errorf("final pragmas: %w", err)
	}

	cfg.Logger.Debug("optimizing")
	if _, err := conn.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	return commit(ctx, conn)
}

// execScript runs the dump in autocommit mode so that dumps carrying their
// own BEGIN/COMMIT work unchanged, then commits anything left open.
func execScript(ctx context.Context, conn *sql.Conn, script string) error {
	if _, err := conn.ExecContext(ctx, script); err != nil {
		return err
	}
	return commit(ctx, conn)
}

// commit ends an open transaction. It is a no-op in autocommit mode.
func commit(ctx context.Context, conn *sql.Conn) error {
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		if isNoActiveTransaction(err) {
			return nil
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// isNoActiveTransaction checks if an error indicates COMMIT outside a transaction.
func isNoActiveTransaction(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no transaction is active")
}
