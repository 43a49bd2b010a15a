// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build mattn

package usbidsdb

import (
	_ "github.com/mattn/go-sqlite3"
)

// driverName is the database/sql name registered by github.com/mattn/go-sqlite3.
const driverName = "sqlite3"

// buildDSN constructs a DSN for github.com/mattn/go-sqlite3.
// The path is percent-encoded so that '?', '#' and '%' in file names are
// not read as URI syntax.
func buildDSN(path string, readOnly bool) string {
	return fileURI(path, readOnly)
}
