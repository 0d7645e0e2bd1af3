// Package indexer coordinates the article lifecycle across the relational
// store and the vector index.
//
// Saving is ordered so the relational store, the source of truth, commits
// last: chunk, embed, purge stale vectors, write new vectors, then upsert
// the row. A crash mid-save can leave orphaned vectors but never a stored
// article without its content; Reindex repairs the vector side from the
// relational side.
package indexer
