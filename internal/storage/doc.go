// Package storage is the relational article store. It owns the articles
// table and its FTS5 shadow table, and is the source of truth for article
// content and metadata; the vector index only carries derived data.
//
// The FTS table is synced manually inside the same transaction as every
// article write, so lexical search never sees a half-written article.
package storage
