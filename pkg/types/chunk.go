package types

import (
	"fmt"
	"strings"
)

// chunkIDSeparator joins an article id to a chunk position. Chunk ids look
// like "<article_id>_chunk_<n>" with n the 0-based position assigned during
// chunking.
const chunkIDSeparator = "_chunk_"

// ChunkMeta is the denormalized article metadata carried by every vector
// index entry. Timestamps are RFC 3339 strings (empty when unknown) and
// Categories is the comma-joined label list, matching the relational
// representation.
type ChunkMeta struct {
	ArticleID     string
	Title         string
	URL           string
	SourceType    string
	Author        string
	PublishedDate string
	Categories    string
	CreatedAt     string
	Keywords      string
}

// CategoryList splits the comma-joined category string into trimmed labels.
func (m ChunkMeta) CategoryList() []string {
	if m.Categories == "" {
		return nil
	}
	parts := strings.Split(m.Categories, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasCategory reports whether the snapshot carries the exact category label.
func (m ChunkMeta) HasCategory(category string) bool {
	for _, c := range m.CategoryList() {
		if c == category {
			return true
		}
	}
	return false
}

// ChunkID formats the vector index key for one chunk of an article.
func ChunkID(articleID string, position int) string {
	return fmt.Sprintf("%s%s%d", articleID, chunkIDSeparator, position)
}

// ArticleIDFromChunk recovers the owning article id from a chunk id by
// stripping the trailing "_chunk_<n>" suffix. Ids without the suffix are
// returned unchanged.
func ArticleIDFromChunk(chunkID string) string {
	if i := strings.LastIndex(chunkID, chunkIDSeparator); i >= 0 {
		return chunkID[:i]
	}
	return chunkID
}
