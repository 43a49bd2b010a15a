// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package usbidsdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
)

// pragma represents a SQLite pragma setting.
type pragma struct {
	name  string
	value string
}

func (p pragma) String() string {
	return fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
}

// bulkLoadPragmas trade crash safety for load speed. The output is rebuilt
// from scratch on failure, so nothing is lost by disabling the journal.
var bulkLoadPragmas = []pragma{
	{name: "journal_mode", value: "OFF"},
	{name: "synchronous", value: "OFF"},
	{name: "temp_store", value: "MEMORY"},
}

// finalPragmas leave the file in a self-contained rollback-journal mode so
// that readers never create WAL sidecars next to the shipped file.
var finalPragmas = []pragma{
	{name: "journal_mode", value: "DELETE"},
}

// applyPragmas executes each pragma on conn in order.
func applyPragmas(ctx context.Context, conn *sql.Conn, pragmas []pragma, logger *slog.Logger) error {
	for _, p := range pragmas {
		logger.Debug("applying pragma", "name", p.name, "value", p.value)
		if _, err := conn.ExecContext(ctx, p.String()); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// fileURI returns path as an SQLite URI filename, e.g. file:///tmp/a%23b.sqlite?mode=ro
func fileURI(path string, readOnly bool) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// windows drive letters: file:///C:/dir/x.sqlite
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	if readOnly {
		u.RawQuery = "mode=ro"
	}
	return u.String()
}
