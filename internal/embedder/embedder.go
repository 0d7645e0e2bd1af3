package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedding is one text's vector plus the identity of the provider that
// produced it. Vectors from different providers are never comparable.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string // hex SHA-256 of the source text, the cache key
}

// Embedder turns text into vectors. Implementations must be deterministic
// per model: the same text always yields the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (*Embedding, error)
	EmbedBatch(ctx context.Context, texts []string) ([]*Embedding, error)
	Dimension() int
	Provider() string
	Model() string
	Close() error
}

const defaultCacheSize = 10000

// Cache is an LRU of embeddings keyed by content hash, shared across a
// provider's single and batch paths.
type Cache struct {
	lru *lru.Cache[string, *Embedding]
}

// NewCache creates a cache holding up to capacity embeddings. Non-positive
// capacities get the default size.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	c, _ := lru.New[string, *Embedding](capacity)
	return &Cache{lru: c}
}

// Get returns a copy of the cached embedding. Copying keeps caller
// mutations out of the cache.
func (c *Cache) Get(hash string) (*Embedding, bool) {
	cached, ok := c.lru.Get(hash)
	if !ok {
		return nil, false
	}
	cp := *cached
	cp.Vector = append([]float32(nil), cached.Vector...)
	return &cp, true
}

// Set stores an embedding, evicting the least recently used entry if full.
func (c *Cache) Set(hash string, emb *Embedding) {
	c.lru.Add(hash, emb)
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// hashText computes the cache key for a text.
func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// validateTexts rejects empty, oversized, or partially empty batches before
// any provider work happens.
func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: empty batch", ErrEmptyText)
	}
	if len(texts) > MaxBatchSize {
		return fmt.Errorf("%w: %d texts, max %d", ErrBatchTooLarge, len(texts), MaxBatchSize)
	}
	for i, t := range texts {
		if t == "" {
			return fmt.Errorf("%w: text %d", ErrEmptyText, i)
		}
	}
	return nil
}
