package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dshills/articlekb-mcp/internal/sqlite"
	"github.com/dshills/articlekb-mcp/pkg/types"
)

// ErrNotFound is returned when an article id does not exist.
var ErrNotFound = errors.New("article not found")

// DatabaseFile is the relational store's filename under the data directory.
const DatabaseFile = "articles.db"

// allowedSortColumns whitelists List sort keys. Anything else falls back to
// created_at rather than erroring, matching the forgiving tool surface.
var allowedSortColumns = map[string]bool{
	"created_at":     true,
	"title":          true,
	"published_date": true,
}

// ArticleStore persists articles and their full-text shadow rows.
type ArticleStore struct {
	db *sql.DB
}

// Open opens the article database under dataDir and applies migrations.
func Open(ctx context.Context, dataDir string) (*ArticleStore, error) {
	db, err := sqlite.Open(filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("open article store: %w", err)
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate article store: %w", err)
	}

	return &ArticleStore{db: db}, nil
}

// Close closes the underlying database.
func (s *ArticleStore) Close() error {
	return s.db.Close()
}

// Upsert writes an article and its FTS shadow row in one transaction.
// Re-saving an existing id replaces the row wholesale.
func (s *ArticleStore) Upsert(ctx context.Context, a *types.Article) error {
	if a.ID == "" {
		return fmt.Errorf("article id is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var published interface{}
	if a.PublishedDate != nil {
		published = a.PublishedDate.Format(time.RFC3339)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO articles
		(id, title, content, url, source_type, author, published_date,
		 categories, created_at, description, summary, keywords, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.URL, string(a.SourceType), a.Author,
		published, strings.Join(a.Categories, ","),
		a.CreatedAt.Format(time.RFC3339),
		a.Description, a.Summary, a.Keywords, a.Tags)
	if err != nil {
		return fmt.Errorf("upsert article %s: %w", a.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM articles_fts WHERE id = ?", a.ID); err != nil {
		return fmt.Errorf("clear fts row %s: %w", a.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO articles_fts (id, title, content, keywords) VALUES (?, ?, ?, ?)",
		a.ID, a.Title, a.Content, a.Keywords)
	if err != nil {
		return fmt.Errorf("insert fts row %s: %w", a.ID, err)
	}

	return tx.Commit()
}

// Get returns the article by id, or ErrNotFound.
func (s *ArticleStore) Get(ctx context.Context, id string) (*types.Article, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM articles WHERE id = ?", id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, err
}

// Delete removes an article and its FTS row, reporting whether it existed.
func (s *ArticleStore) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete article %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM articles_fts WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("delete fts row %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns articles newest-first by default. A non-empty category is a
// substring filter against the comma-joined label list; sortBy must be one
// of created_at, title, published_date; limit <= 0 means no limit.
func (s *ArticleStore) List(ctx context.Context, category, sortBy string, limit int) ([]*types.Article, error) {
	if !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	query := selectColumns + " FROM articles"
	var args []interface{}
	if category != "" {
		query += " WHERE categories LIKE ?"
		args = append(args, "%"+category+"%")
	}
	query += " ORDER BY " + sortBy + " DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectArticles(rows)
}

// Count returns the number of stored articles.
func (s *ArticleStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// Categories returns every distinct category label with its article count,
// sorted by name. Labels are split out of the comma-joined column, so the
// counts are exact even when articles carry several labels.
func (s *ArticleStore) Categories(ctx context.Context) ([]types.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT categories FROM articles WHERE categories != ''")
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, err
		}
		for _, c := range strings.Split(joined, ",") {
			if c = strings.TrimSpace(c); c != "" {
				counts[c]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	categories := make([]types.Category, 0, len(counts))
	for name, count := range counts {
		categories = append(categories, types.Category{Name: name, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// MetadataPatch carries the updatable metadata fields. Nil fields are left
// untouched; empty strings clear.
type MetadataPatch struct {
	Description *string
	Summary     *string
	Keywords    *string
	Tags        *string
}

// UpdateMetadata applies a partial metadata update, reporting whether the
// article existed. Keyword changes propagate to the FTS row so lexical
// search picks them up immediately.
func (s *ArticleStore) UpdateMetadata(ctx context.Context, id string, patch MetadataPatch) (bool, error) {
	var sets []string
	var args []interface{}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	if patch.Keywords != nil {
		sets = append(sets, "keywords = ?")
		args = append(args, *patch.Keywords)
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *patch.Tags)
	}
	if len(sets) == 0 {
		// Nothing to change; still report existence.
		_, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin metadata update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args = append(args, id)
	res, err := tx.ExecContext(ctx,
		"UPDATE articles SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("update metadata %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if patch.Keywords != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE articles_fts SET keywords = ? WHERE id = ?", *patch.Keywords, id); err != nil {
			return false, fmt.Errorf("sync fts keywords %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

const selectColumns = `SELECT id, title, content, url, source_type, author,
	published_date, categories, created_at, description, summary, keywords, tags`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*types.Article, error) {
	var a types.Article
	var sourceType, categories, createdAt string
	var published sql.NullString

	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.URL, &sourceType, &a.Author,
		&published, &categories, &createdAt, &a.Description, &a.Summary,
		&a.Keywords, &a.Tags)
	if err != nil {
		return nil, err
	}

	hydrateArticle(&a, sourceType, categories, createdAt, published)
	return &a, nil
}

// hydrateArticle converts raw column values into their typed Article fields.
func hydrateArticle(a *types.Article, sourceType, categories, createdAt string, published sql.NullString) {
	a.SourceType = types.SourceType(sourceType)
	if categories != "" {
		for _, c := range strings.Split(categories, ",") {
			if c = strings.TrimSpace(c); c != "" {
				a.Categories = append(a.Categories, c)
			}
		}
	}
	if published.Valid && published.String != "" {
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			a.PublishedDate = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = t
	}
}

func collectArticles(rows *sql.Rows) ([]*types.Article, error) {
	var articles []*types.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
