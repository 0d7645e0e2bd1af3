package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/articlekb-mcp/internal/sqlite"
	"github.com/dshills/articlekb-mcp/pkg/types"
)

// insertBatchSize bounds how many entries go into a single transaction.
const insertBatchSize = 50

// Entry is one chunk vector plus the metadata snapshot stored alongside it.
// The snapshot lets semantic search filter by category without touching the
// relational store.
type Entry struct {
	ID       string // chunk id: {article_id}_chunk_{n}
	Vector   []float32
	Document string
	Meta     types.ChunkMeta
}

// Match is a nearest-neighbor result. Distance is cosine distance
// (1 - similarity), so lower is closer.
type Match struct {
	ID       string
	Distance float64
	Document string
	Meta     types.ChunkMeta
}

// Index is a vector store backed by a single SQLite file.
type Index struct {
	db       *sql.DB
	provider string
}

// Open opens (creating if needed) the vector index for the given provider
// under dataDir/vectors/.
func Open(dataDir, provider string) (*Index, error) {
	dir := filepath.Join(dataDir, "vectors")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create vector directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("articles_%s.db", provider))
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	idx := &Index{db: db, provider: provider}
	if err := idx.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return idx, nil
}

func (idx *Index) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL,
		document TEXT NOT NULL,
		vector BLOB NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		source_type TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		published_date TEXT NOT NULL DEFAULT '',
		categories TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_article_id ON chunks(article_id);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("init vector schema: %w", err)
	}
	return nil
}

// Provider returns the embedding provider this index is partitioned for.
func (idx *Index) Provider() string {
	return idx.provider
}

// Add upserts entries, splitting large slices into bounded transactions so a
// long article never holds the writer for its full chunk count.
func (idx *Index) Add(ctx context.Context, entries []Entry) error {
	for start := 0; start < len(entries); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := idx.addBatch(ctx, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) addBatch(ctx context.Context, entries []Entry) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin vector insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks
		(id, article_id, document, vector, title, url, source_type, author,
		 published_date, categories, created_at, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vector insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		articleID := e.Meta.ArticleID
		if articleID == "" {
			articleID = types.ArticleIDFromChunk(e.ID)
		}
		_, err := stmt.ExecContext(ctx,
			e.ID, articleID, e.Document, serializeVector(e.Vector),
			e.Meta.Title, e.Meta.URL, e.Meta.SourceType, e.Meta.Author,
			e.Meta.PublishedDate, e.Meta.Categories, e.Meta.CreatedAt,
			e.Meta.Keywords)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteArticle removes every chunk belonging to the article and reports how
// many were removed.
func (idx *Index) DeleteArticle(ctx context.Context, articleID string) (int, error) {
	res, err := idx.db.ExecContext(ctx, "DELETE FROM chunks WHERE article_id = ?", articleID)
	if err != nil {
		return 0, fmt.Errorf("delete article chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Count returns the total number of indexed chunks.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (idx *Index) Close() error {
	return idx.db.Close()
}
