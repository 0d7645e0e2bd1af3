//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package sqlite

// This file is compiled when building without CGO or without the sqlite_vec
// tag. It uses a pure Go SQLite implementation; vector similarity is then
// computed in Go rather than by the sqlite-vec extension.
//
// Build command:
//   CGO_ENABLED=0 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates if the sqlite-vec extension is available
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
