package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/articlekb-mcp/pkg/types"
)

func TestFindByTitle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testArticle("a1", "Deep Learning Fundamentals")))
	require.NoError(t, store.Upsert(ctx, testArticle("a2", "Gardening Basics")))

	// Substring match, case-insensitive for ASCII.
	articles, err := store.FindByTitle(ctx, "deep learning", "", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "a1", articles[0].ID)

	articles, err = store.FindByTitle(ctx, "Basics", "", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "a2", articles[0].ID)

	articles, err = store.FindByTitle(ctx, "nonexistent", "", 10)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFindByTitle_CategoryFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "Concurrency Patterns")
	b := testArticle("a2", "Concurrency in Databases")
	b.Categories = []string{"databases"}
	require.NoError(t, store.Upsert(ctx, a))
	require.NoError(t, store.Upsert(ctx, b))

	articles, err := store.FindByTitle(ctx, "Concurrency", "databases", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "a2", articles[0].ID)
}

func TestFindByTitle_EmptyInputs(t *testing.T) {
	store := openTestStore(t)

	articles, err := store.FindByTitle(context.Background(), "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, articles)

	articles, err = store.FindByTitle(context.Background(), "x", "", 0)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestSearchText_RanksByRelevance(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "Kubernetes Networking")
	a.Content = "kubernetes kubernetes kubernetes pods services networking"
	b := testArticle("a2", "Cloud Overview")
	b.Content = "a passing mention of kubernetes among other things"
	require.NoError(t, store.Upsert(ctx, a))
	require.NoError(t, store.Upsert(ctx, b))

	hits, err := store.SearchText(ctx, "kubernetes", "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a1", hits[0].Article.ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	for _, h := range hits {
		assert.Positive(t, h.Score)
	}
}

func TestSearchText_PorterStemming(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "On Running")
	a.Content = "The runner was running daily"
	require.NoError(t, store.Upsert(ctx, a))

	hits, err := store.SearchText(ctx, "runs", "", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestSearchText_PunctuationSanitized(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "Question Answering")
	a.Content = "systems that answer natural language questions"
	require.NoError(t, store.Upsert(ctx, a))

	// Raw FTS5 would reject these queries as syntax errors.
	for _, q := range []string{
		`what is "question answering"?`,
		`question-answering (overview)`,
		`question: answering!`,
	} {
		hits, err := store.SearchText(ctx, q, "", 10)
		require.NoError(t, err, "query %q", q)
		assert.NotEmpty(t, hits, "query %q", q)
	}
}

func TestSearchText_CategoryFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "Rust Memory Safety")
	b := testArticle("a2", "Go Memory Model")
	b.Categories = []string{"golang"}
	require.NoError(t, store.Upsert(ctx, a))
	require.NoError(t, store.Upsert(ctx, b))

	hits, err := store.SearchText(ctx, "memory", "golang", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a2", hits[0].Article.ID)
}

func TestSearchText_KeywordsSearchable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "Untitled Draft")
	a.Content = "body text with nothing special"
	a.Keywords = "cryptography,zero-knowledge"
	require.NoError(t, store.Upsert(ctx, a))

	hits, err := store.SearchText(ctx, "cryptography", "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a1", hits[0].Article.ID)
}

func TestSearchText_NoMatches(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testArticle("a1", "Something")))

	hits, err := store.SearchText(ctx, "xylophone", "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSanitizeFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain words", "plain words"},
		{`"quoted phrase"`, "quoted phrase"},
		{"wild*card", "wild card"},
		{"(grouped) - terms:here", "grouped terms here"},
		{"what? why! how;", "what why how"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFTSQuery(tt.in), "input %q", tt.in)
	}
}

func TestScoredArticle_HydratesFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := testArticle("a1", "Hydration Check")
	require.NoError(t, store.Upsert(ctx, a))

	hits, err := store.SearchText(ctx, "hydration", "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	got := hits[0].Article
	assert.Equal(t, types.SourceURL, got.SourceType)
	assert.Equal(t, []string{"machine-learning", "go"}, got.Categories)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
}
