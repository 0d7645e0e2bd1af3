// Package embedder generates vector embeddings for article chunks.
//
// Two providers are supported: OpenAI (text-embedding-3-small, 1536
// dimensions) and a local deterministic hash-based provider (384
// dimensions) that needs no network access. Provider selection happens
// once at startup via EMBEDDING_PROVIDER; embeddings from different
// providers are never mixed because the vector index is partitioned by
// provider name.
//
// All providers share an LRU cache keyed by content hash, so re-indexing
// unchanged chunks costs nothing.
package embedder
