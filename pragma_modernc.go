// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build !mattn

package usbidsdb

import (
	_ "modernc.org/sqlite"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// buildDSN constructs a DSN for modernc.org/sqlite.
// The path is percent-encoded so that '?', '#' and '%' in file names are
// not read as URI syntax.
func buildDSN(path string, readOnly bool) string {
	return fileURI(path, readOnly)
}
