// Package sqlite selects the SQLite driver at build time and opens databases
// with the settings shared by the relational store and the vector index.
//
// Two build configurations are supported:
//   - default / purego: modernc.org/sqlite, no C compiler required
//   - sqlite_vec (CGO): github.com/mattn/go-sqlite3 with the sqlite-vec
//     extension for SQL-level vector distance
package sqlite
