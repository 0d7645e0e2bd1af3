package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/articlekb-mcp/pkg/types"
)

func openTestStore(t *testing.T) *ArticleStore {
	t.Helper()
	store, err := Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testArticle(id, title string) *types.Article {
	return &types.Article{
		ID:         id,
		Title:      title,
		Content:    "Body of " + title,
		URL:        "https://example.com/" + id,
		SourceType: types.SourceURL,
		Author:     "Ada",
		Categories: []string{"machine-learning", "go"},
		CreatedAt:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpsertAndGet_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := testArticle("a1", "Understanding Transformers")
	a.PublishedDate = &published
	a.Description = "desc"
	a.Keywords = "attention,transformer"

	require.NoError(t, store.Upsert(ctx, a))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, a.Content, got.Content)
	assert.Equal(t, types.SourceURL, got.SourceType)
	assert.Equal(t, []string{"machine-learning", "go"}, got.Categories)
	require.NotNil(t, got.PublishedDate)
	assert.True(t, published.Equal(*got.PublishedDate))
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, "attention,transformer", got.Keywords)
}

func TestGet_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsert_ReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testArticle("a1", "First Title")))

	updated := testArticle("a1", "Second Title")
	updated.Content = "New content entirely"
	require.NoError(t, store.Upsert(ctx, updated))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Second Title", got.Title)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// FTS reflects the replacement, not the original.
	hits, err := store.SearchText(ctx, "entirely", "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	hits, err = store.SearchText(ctx, "First", "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpsert_EmptyIDRejected(t *testing.T) {
	store := openTestStore(t)

	err := store.Upsert(context.Background(), &types.Article{Title: "No ID"})
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testArticle("a1", "Doomed")))

	existed, err := store.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, existed)

	// FTS row is gone too.
	hits, err := store.SearchText(ctx, "Doomed", "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestList_SortAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, title := range []string{"Alpha", "Bravo", "Charlie"} {
		a := testArticle(title, title)
		a.CreatedAt = time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Upsert(ctx, a))
	}

	// Default sort: created_at descending.
	articles, err := store.List(ctx, "", "created_at", 0)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "Charlie", articles[0].Title)

	// Title sort, descending.
	articles, err = store.List(ctx, "", "title", 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Charlie", articles[0].Title)
	assert.Equal(t, "Bravo", articles[1].Title)

	// Unknown sort falls back to created_at instead of erroring.
	articles, err = store.List(ctx, "", "id; DROP TABLE articles", 0)
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestList_CategoryFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "ML Article")
	b := testArticle("a2", "Cooking Article")
	b.Categories = []string{"cooking"}
	require.NoError(t, store.Upsert(ctx, a))
	require.NoError(t, store.Upsert(ctx, b))

	articles, err := store.List(ctx, "machine-learning", "created_at", 0)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "ML Article", articles[0].Title)
}

func TestCategories_Counts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "One")
	a.Categories = []string{"go", "ai"}
	b := testArticle("a2", "Two")
	b.Categories = []string{"go"}
	c := testArticle("a3", "Three")
	c.Categories = nil
	require.NoError(t, store.Upsert(ctx, a))
	require.NoError(t, store.Upsert(ctx, b))
	require.NoError(t, store.Upsert(ctx, c))

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, types.Category{Name: "ai", Count: 1}, categories[0])
	assert.Equal(t, types.Category{Name: "go", Count: 2}, categories[1])
}

func TestUpdateMetadata(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testArticle("a1", "Annotated")))

	desc := "a short description"
	keywords := "quantum,entanglement"
	ok, err := store.UpdateMetadata(ctx, "a1", MetadataPatch{
		Description: &desc,
		Keywords:    &keywords,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	assert.Equal(t, keywords, got.Keywords)
	assert.Empty(t, got.Summary)

	// New keywords are immediately searchable.
	hits, err := store.SearchText(ctx, "entanglement", "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a1", hits[0].Article.ID)
}

func TestUpdateMetadata_MissingArticle(t *testing.T) {
	store := openTestStore(t)

	desc := "x"
	ok, err := store.UpdateMetadata(context.Background(), "missing", MetadataPatch{Description: &desc})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateMetadata_EmptyPatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testArticle("a1", "Untouched")))

	ok, err := store.UpdateMetadata(ctx, "a1", MetadataPatch{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.UpdateMetadata(ctx, "missing", MetadataPatch{})
	require.NoError(t, err)
	assert.False(t, ok)
}
