package indexer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/articlekb-mcp/internal/chunker"
	"github.com/dshills/articlekb-mcp/internal/embedder"
	"github.com/dshills/articlekb-mcp/internal/storage"
	"github.com/dshills/articlekb-mcp/internal/vectorindex"
	"github.com/dshills/articlekb-mcp/pkg/types"
)

// reindexWorkers bounds concurrent article re-embedding during Reindex.
const reindexWorkers = 4

// Indexer owns article writes. Reads can go straight to the store; every
// mutation goes through here so the vector index never drifts silently.
type Indexer struct {
	store *storage.ArticleStore
	index *vectorindex.Index
	emb   embedder.Embedder
	chunk chunker.Options
}

// New creates an Indexer with default chunking options.
func New(store *storage.ArticleStore, index *vectorindex.Index, emb embedder.Embedder) *Indexer {
	return &Indexer{
		store: store,
		index: index,
		emb:   emb,
		chunk: chunker.DefaultOptions(),
	}
}

// SaveArticle chunks, embeds, indexes, and stores the article. Articles
// without an id get one assigned; re-saving an existing id replaces both the
// row and all of its vectors. The article is mutated in place with the
// assigned id and timestamp.
func (ix *Indexer) SaveArticle(ctx context.Context, a *types.Article) error {
	if a.Title == "" {
		return fmt.Errorf("article title is empty")
	}
	if a.Content == "" {
		return fmt.Errorf("article content is empty")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	if err := ix.reindexVectors(ctx, a); err != nil {
		return err
	}

	if err := ix.store.Upsert(ctx, a); err != nil {
		return fmt.Errorf("store article %s: %w", a.ID, err)
	}
	return nil
}

// reindexVectors replaces the article's chunks in the vector index. Old
// vectors are purged first so a shorter revision leaves no tail of stale
// chunks behind.
func (ix *Indexer) reindexVectors(ctx context.Context, a *types.Article) error {
	chunks := chunker.Split(a.Content, ix.chunk)

	entries := make([]vectorindex.Entry, 0, len(chunks))
	meta := a.Meta()
	for start := 0; start < len(chunks); start += embedder.DefaultBatchSize {
		end := start + embedder.DefaultBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		embs, err := ix.emb.EmbedBatch(ctx, chunks[start:end])
		if err != nil {
			return fmt.Errorf("embed article %s: %w", a.ID, err)
		}
		for i, emb := range embs {
			position := start + i
			entries = append(entries, vectorindex.Entry{
				ID:       types.ChunkID(a.ID, position),
				Vector:   emb.Vector,
				Document: chunks[position],
				Meta:     meta,
			})
		}
	}

	if _, err := ix.index.DeleteArticle(ctx, a.ID); err != nil {
		return fmt.Errorf("purge stale vectors %s: %w", a.ID, err)
	}
	if err := ix.index.Add(ctx, entries); err != nil {
		return fmt.Errorf("index article %s: %w", a.ID, err)
	}
	return nil
}

// DeleteArticle removes the article everywhere, reporting whether it
// existed. Vectors go first; if the relational delete then fails, search can
// no longer surface the article and a retry finishes the job.
func (ix *Indexer) DeleteArticle(ctx context.Context, id string) (bool, error) {
	if _, err := ix.index.DeleteArticle(ctx, id); err != nil {
		return false, fmt.Errorf("delete vectors %s: %w", id, err)
	}

	existed, err := ix.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete article %s: %w", id, err)
	}
	return existed, nil
}

// Reindex rebuilds the vector index for every stored article and returns
// how many were processed. Used after switching embedding providers or to
// repair orphaned vectors.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	articles, err := ix.store.List(ctx, "", "created_at", 0)
	if err != nil {
		return 0, fmt.Errorf("list articles for reindex: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexWorkers)
	for _, a := range articles {
		g.Go(func() error {
			if err := ix.reindexVectors(gctx, a); err != nil {
				return err
			}
			log.Printf("reindexed article %s (%s)", a.ID, a.Title)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(articles), nil
}
