// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config

import (
	"path/filepath"
	"runtime"
)

// ProjectRoot is the repository root, resolved once from the location of
// this source file so it does not depend on the working directory.
var ProjectRoot = projectRoot()

func projectRoot() string {
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	// <root>/internal/config/paths.go
	return filepath.Dir(filepath.Dir(filepath.Dir(self)))
}

// DefaultDumpPath returns the SQL dump location under root.
func DefaultDumpPath(root string) string {
	return filepath.Join(root, "assets", "db_src", "usbids.sql")
}

// DefaultOutputPath returns the database location under root.
func DefaultOutputPath(root string) string {
	return filepath.Join(root, "assets", "db", "usbids.sqlite")
}
