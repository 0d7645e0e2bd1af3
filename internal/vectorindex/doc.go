// Package vectorindex stores chunk embeddings in SQLite and answers
// nearest-neighbor queries by cosine distance.
//
// Each embedding provider gets its own database file
// (vectors/articles_<provider>.db) because vectors from providers with
// different dimensions cannot be compared. Switching providers therefore
// never corrupts an existing index; the old file simply goes cold.
//
// Queries run in one of two modes, chosen at build time: an optimized path
// that pushes distance computation into SQL via the sqlite-vec extension,
// and a pure-Go fallback that scans candidate vectors and ranks them in
// memory. Both return identical results.
package vectorindex
