package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/articlekb-mcp/pkg/types"
)

// ScoredArticle is a lexical search hit. Score is the negated BM25 value, so
// higher means more relevant.
type ScoredArticle struct {
	Article *types.Article
	Score   float64
}

// FindByTitle returns articles whose title contains the substring,
// case-insensitively via SQLite's default LIKE semantics. A non-empty
// category narrows by the comma-joined label list.
func (s *ArticleStore) FindByTitle(ctx context.Context, substr, category string, limit int) ([]*types.Article, error) {
	if substr == "" || limit <= 0 {
		return nil, nil
	}

	query := selectColumns + " FROM articles WHERE title LIKE ?"
	args := []interface{}{"%" + substr + "%"}
	if category != "" {
		query += " AND categories LIKE ?"
		args = append(args, "%"+category+"%")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("title search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectArticles(rows)
}

// SearchText runs BM25 full-text search over title, content, and keywords.
// Results come back best-first with positive scores.
func (s *ArticleStore) SearchText(ctx context.Context, query, category string, limit int) ([]ScoredArticle, error) {
	if limit <= 0 {
		return nil, nil
	}

	match := sanitizeFTSQuery(query)
	if match == "" {
		return nil, nil
	}

	sqlQuery := `
		SELECT a.id, a.title, a.content, a.url, a.source_type, a.author,
		       a.published_date, a.categories, a.created_at, a.description,
		       a.summary, a.keywords, a.tags,
		       bm25(articles_fts) AS score
		FROM articles_fts
		JOIN articles a ON a.id = articles_fts.id
		WHERE articles_fts MATCH ?`
	args := []interface{}{match}
	if category != "" {
		sqlQuery += " AND a.categories LIKE ?"
		args = append(args, "%"+category+"%")
	}
	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []ScoredArticle
	for rows.Next() {
		a, rawScore, err := scanScoredArticle(rows)
		if err != nil {
			return nil, err
		}
		// BM25 is negative with lower meaning better; negate so callers see
		// higher-is-better.
		results = append(results, ScoredArticle{Article: a, Score: -rawScore})
	}
	return results, rows.Err()
}

func scanScoredArticle(rows *sql.Rows) (*types.Article, float64, error) {
	var a types.Article
	var sourceType, categories, createdAt string
	var published sql.NullString
	var rawScore float64

	err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.URL, &sourceType, &a.Author,
		&published, &categories, &createdAt, &a.Description, &a.Summary,
		&a.Keywords, &a.Tags, &rawScore)
	if err != nil {
		return nil, 0, err
	}

	hydrateArticle(&a, sourceType, categories, createdAt, published)
	return &a, rawScore, nil
}

// ftsSpecials matches FTS5 syntax characters. Queries are plain prose from a
// model or a human, never FTS expressions, so specials become spaces instead
// of being escaped.
var ftsSpecials = regexp.MustCompile(`[.*"()\-:^,?!;]`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// sanitizeFTSQuery strips FTS5 syntax from a user query. If nothing survives
// stripping, the raw query is returned so odd-but-valid queries still match.
func sanitizeFTSQuery(query string) string {
	cleaned := ftsSpecials.ReplaceAllString(query, " ")
	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return strings.TrimSpace(query)
	}
	return cleaned
}
