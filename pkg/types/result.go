package types

import "time"

// SearchResult pairs an article with a relevance score for one query. Scores
// are not comparable across retrieval stages: title matches use a fixed
// sentinel, lexical matches use the negated BM25 scale, and semantic matches
// use cosine similarity in [0, 1].
type SearchResult struct {
	Article       *Article
	Score         float64
	MatchedChunks []string // at most 3, semantic matches only
}

// Category is a label with the number of articles carrying it. Recomputed on
// every listing, never materialized.
type Category struct {
	Name  string
	Count int
}

// ChunkHit is a single relevant chunk returned for RAG-style retrieval.
type ChunkHit struct {
	ArticleID string
	Title     string
	Content   string
	Score     float64
}

// ExtractedContent is what a content extractor returns for a URL or PDF.
type ExtractedContent struct {
	Title         string
	Content       string
	Author        string
	PublishedDate *time.Time
	URL           string
}
