package searcher

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/dshills/articlekb-mcp/internal/embedder"
	"github.com/dshills/articlekb-mcp/internal/storage"
	"github.com/dshills/articlekb-mcp/internal/vectorindex"
	"github.com/dshills/articlekb-mcp/pkg/types"
)

const (
	// DefaultLimit is used when callers pass a non-positive limit.
	DefaultLimit = 5

	// titleMatchScore is the fixed score for title-stage hits. Title matches
	// are treated as exact and always outrank later stages.
	titleMatchScore = 1.0

	// maxTitleTokens bounds how many query tokens probe the title stage.
	maxTitleTokens = 3

	// maxMatchedChunks caps chunk excerpts carried per semantic result.
	maxMatchedChunks = 3

	// semanticOverfetch widens the nearest-neighbor pool so article-level
	// dedup still fills the requested count.
	semanticOverfetch = 5
)

// titleTokens extracts words and numbers from a query for title probing.
var titleTokens = regexp.MustCompile(`[0-9.]+|\p{L}+`)

// Searcher answers queries against one store/index/embedder triple.
type Searcher struct {
	store *storage.ArticleStore
	index *vectorindex.Index
	emb   embedder.Embedder
}

// New creates a Searcher.
func New(store *storage.ArticleStore, index *vectorindex.Index, emb embedder.Embedder) *Searcher {
	return &Searcher{store: store, index: index, emb: emb}
}

// Search runs the full waterfall: title, then lexical, then semantic. The
// title stage probes the whole query before individual tokens, so an exact
// phrase in a title outranks token-only matches. A non-empty category
// narrows every stage. Failures in the semantic stage abort the search
// rather than silently degrading it.
func (s *Searcher) Search(ctx context.Context, query, category string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]types.SearchResult, 0, limit)
	seen := make(map[string]bool)

	if err := s.titleStage(ctx, query, category, limit, seen, &results); err != nil {
		return nil, err
	}
	if len(results) < limit {
		if err := s.lexicalStage(ctx, query, category, limit, seen, &results); err != nil {
			return nil, err
		}
	}
	if len(results) < limit {
		if err := s.semanticStage(ctx, query, category, limit, seen, &results); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// titleStage matches the whole query as a title substring, then individual
// query tokens, so multi-word queries still reach titles that contain only
// some of the words.
func (s *Searcher) titleStage(ctx context.Context, query, category string, limit int, seen map[string]bool, results *[]types.SearchResult) error {
	probes := []string{query}
	for _, tok := range titleTokens.FindAllString(query, -1) {
		if len([]rune(tok)) >= 2 && tok != query {
			probes = append(probes, tok)
		}
		if len(probes) > maxTitleTokens {
			break
		}
	}

	for _, probe := range probes {
		if len(*results) >= limit {
			return nil
		}
		articles, err := s.store.FindByTitle(ctx, probe, category, limit)
		if err != nil {
			return fmt.Errorf("title stage: %w", err)
		}
		for _, a := range articles {
			if len(*results) >= limit {
				return nil
			}
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			*results = append(*results, types.SearchResult{Article: a, Score: titleMatchScore})
		}
	}
	return nil
}

func (s *Searcher) lexicalStage(ctx context.Context, query, category string, limit int, seen map[string]bool, results *[]types.SearchResult) error {
	hits, err := s.store.SearchText(ctx, query, category, limit)
	if err != nil {
		return fmt.Errorf("lexical stage: %w", err)
	}
	for _, h := range hits {
		if len(*results) >= limit {
			return nil
		}
		if seen[h.Article.ID] {
			continue
		}
		seen[h.Article.ID] = true
		*results = append(*results, types.SearchResult{Article: h.Article, Score: h.Score})
	}
	return nil
}

func (s *Searcher) semanticStage(ctx context.Context, query, category string, limit int, seen map[string]bool, results *[]types.SearchResult) error {
	remaining := limit - len(*results)
	grouped, err := s.semanticCandidates(ctx, query, category, remaining+semanticOverfetch)
	if err != nil {
		return err
	}

	for _, g := range grouped {
		if len(*results) >= limit {
			return nil
		}
		if seen[g.articleID] {
			continue
		}
		article, err := s.store.Get(ctx, g.articleID)
		if errors.Is(err, storage.ErrNotFound) {
			continue // Stale vector entry; repair belongs to reindexing.
		}
		if err != nil {
			return fmt.Errorf("semantic stage: %w", err)
		}
		seen[g.articleID] = true
		*results = append(*results, types.SearchResult{
			Article:       article,
			Score:         g.score,
			MatchedChunks: g.chunks,
		})
	}
	return nil
}

// semanticGroup is one article's best showing among nearest-neighbor hits.
type semanticGroup struct {
	articleID string
	score     float64
	chunks    []string
}

// semanticCandidates embeds the query, fetches the k nearest chunks, and
// groups them by article in best-first order. Each group keeps the maximum
// similarity and at most maxMatchedChunks chunk texts. Category filtering
// uses the metadata snapshot carried by the index, so deleted-but-stale
// entries never force a relational lookup here.
func (s *Searcher) semanticCandidates(ctx context.Context, query, category string, k int) ([]semanticGroup, error) {
	emb, err := s.emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, emb.Vector, k, "")
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	var order []string
	byArticle := make(map[string]*semanticGroup)
	for _, m := range matches {
		if category != "" && !m.Meta.HasCategory(category) {
			continue
		}
		id := m.Meta.ArticleID
		g, ok := byArticle[id]
		if !ok {
			g = &semanticGroup{articleID: id, score: 1.0 - m.Distance}
			byArticle[id] = g
			order = append(order, id)
		}
		if score := 1.0 - m.Distance; score > g.score {
			g.score = score
		}
		if len(g.chunks) < maxMatchedChunks {
			g.chunks = append(g.chunks, m.Document)
		}
	}

	grouped := make([]semanticGroup, 0, len(order))
	for _, id := range order {
		grouped = append(grouped, *byArticle[id])
	}
	return grouped, nil
}

// Lexical exposes the BM25 stage on its own.
func (s *Searcher) Lexical(ctx context.Context, query, category string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	hits, err := s.store.SearchText(ctx, query, category, limit)
	if err != nil {
		return nil, err
	}
	results := make([]types.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.SearchResult{Article: h.Article, Score: h.Score})
	}
	return results, nil
}

// Semantic exposes the nearest-neighbor stage on its own.
func (s *Searcher) Semantic(ctx context.Context, query, category string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]types.SearchResult, 0, limit)
	seen := make(map[string]bool)
	if err := s.semanticStage(ctx, query, category, limit, seen, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// RelevantChunks returns the chunks closest to the query for RAG-style use.
// A non-empty articleID scopes retrieval to that article.
func (s *Searcher) RelevantChunks(ctx context.Context, query, articleID string, limit int) ([]types.ChunkHit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	emb, err := s.emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, emb.Vector, limit, articleID)
	if err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}

	hits := make([]types.ChunkHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, types.ChunkHit{
			ArticleID: m.Meta.ArticleID,
			Title:     m.Meta.Title,
			Content:   m.Document,
			Score:     1.0 - m.Distance,
		})
	}
	return hits, nil
}
