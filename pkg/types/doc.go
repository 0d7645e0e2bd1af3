// Package types defines the shared data model for the article knowledge
// base: the canonical Article record, search results, and the denormalized
// chunk metadata carried by the vector index.
package types
