//go:build sqlite_vec
// +build sqlite_vec

package sqlite

// This file is compiled when building with CGO and the sqlite_vec tag. It
// enables the sqlite-vec extension so nearest-neighbor queries run as SQL.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec,fts5" ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// VectorExtensionAvailable indicates if the sqlite-vec extension is available
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
