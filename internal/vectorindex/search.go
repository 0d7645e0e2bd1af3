package vectorindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/dshills/articlekb-mcp/internal/sqlite"
)

// Query returns the k nearest chunks to the query vector, closest first.
// A non-empty articleID scopes the search to that article's chunks.
func (idx *Index) Query(ctx context.Context, vector []float32, k int, articleID string) ([]Match, error) {
	if k <= 0 {
		return []Match{}, nil
	}

	// Use SQL-side distance when sqlite-vec is compiled in; otherwise scan
	// candidates and rank in Go.
	if sqlite.VectorExtensionAvailable {
		return idx.queryOptimized(ctx, vector, k, articleID)
	}
	return idx.queryFallback(ctx, vector, k, articleID)
}

func (idx *Index) queryOptimized(ctx context.Context, vector []float32, k int, articleID string) ([]Match, error) {
	blob := serializeVector(vector)

	query := `
		SELECT id, article_id, document, title, url, source_type, author,
		       published_date, categories, created_at, keywords,
		       vec_distance_cosine(vector, ?) AS distance
		FROM chunks`
	args := []interface{}{blob}
	if articleID != "" {
		query += " WHERE article_id = ?"
		args = append(args, articleID)
	}
	query += " ORDER BY distance LIMIT ?"
	args = append(args, k)

	rows, err := idx.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	matches := make([]Match, 0, k)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (idx *Index) queryFallback(ctx context.Context, vector []float32, k int, articleID string) ([]Match, error) {
	query := `
		SELECT id, article_id, document, title, url, source_type, author,
		       published_date, categories, created_at, keywords, vector
		FROM chunks`
	var args []interface{}
	if articleID != "" {
		query += " WHERE article_id = ?"
		args = append(args, articleID)
	}

	rows, err := idx.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan candidate vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []Match
	for rows.Next() {
		var m Match
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Meta.ArticleID, &m.Document,
			&m.Meta.Title, &m.Meta.URL, &m.Meta.SourceType, &m.Meta.Author,
			&m.Meta.PublishedDate, &m.Meta.Categories, &m.Meta.CreatedAt,
			&m.Meta.Keywords, &blob); err != nil {
			return nil, err
		}

		candidate := deserializeVector(blob)
		if len(candidate) != len(vector) {
			continue // Dimension mismatch, skip
		}

		m.Distance = 1.0 - cosineSimilarity(vector, candidate)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func scanMatch(rows *sql.Rows) (Match, error) {
	var m Match
	err := rows.Scan(&m.ID, &m.Meta.ArticleID, &m.Document,
		&m.Meta.Title, &m.Meta.URL, &m.Meta.SourceType, &m.Meta.Author,
		&m.Meta.PublishedDate, &m.Meta.Categories, &m.Meta.CreatedAt,
		&m.Meta.Keywords, &m.Distance)
	return m, err
}

// serializeVector converts a float32 slice to a little-endian byte blob,
// the layout sqlite-vec expects.
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
