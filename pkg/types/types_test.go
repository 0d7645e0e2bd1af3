package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunkID_RoundTrip(t *testing.T) {
	id := ChunkID("abc-123", 7)
	assert.Equal(t, "abc-123_chunk_7", id)
	assert.Equal(t, "abc-123", ArticleIDFromChunk(id))
}

func TestArticleIDFromChunk_UnderscoreHeavyID(t *testing.T) {
	// Article ids may themselves contain the separator text; only the final
	// occurrence is the suffix.
	id := ChunkID("my_chunk_article", 2)
	assert.Equal(t, "my_chunk_article", ArticleIDFromChunk(id))
}

func TestArticleIDFromChunk_NoSuffix(t *testing.T) {
	assert.Equal(t, "plain-id", ArticleIDFromChunk("plain-id"))
}

func TestArticleMeta(t *testing.T) {
	published := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a := &Article{
		ID:            "a1",
		Title:         "T",
		URL:           "https://example.com",
		SourceType:    SourcePDF,
		Author:        "B",
		PublishedDate: &published,
		Categories:    []string{"x", "y"},
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Keywords:      "k1,k2",
	}

	meta := a.Meta()
	assert.Equal(t, "a1", meta.ArticleID)
	assert.Equal(t, "pdf", meta.SourceType)
	assert.Equal(t, "x,y", meta.Categories)
	assert.Equal(t, "2025-05-01T00:00:00Z", meta.PublishedDate)
	assert.Equal(t, "2026-01-01T00:00:00Z", meta.CreatedAt)
}

func TestArticleMeta_ZeroTimes(t *testing.T) {
	meta := (&Article{ID: "a1"}).Meta()
	assert.Empty(t, meta.PublishedDate)
	assert.Empty(t, meta.CreatedAt)
}

func TestChunkMetaCategoryList(t *testing.T) {
	m := ChunkMeta{Categories: "ai, go ,,ml"}
	assert.Equal(t, []string{"ai", "go", "ml"}, m.CategoryList())
	assert.True(t, m.HasCategory("go"))
	assert.False(t, m.HasCategory("rust"))

	assert.Nil(t, ChunkMeta{}.CategoryList())
}

func TestHasCategory_TrimsStoredLabels(t *testing.T) {
	a := &Article{Categories: []string{" ai ", "go"}}
	assert.True(t, a.HasCategory("ai"))
	assert.False(t, a.HasCategory("ml"))
}
