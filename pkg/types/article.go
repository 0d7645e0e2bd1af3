package types

import (
	"strings"
	"time"
)

// SourceType identifies where an article's content came from.
type SourceType string

const (
	// SourceURL marks articles ingested from a web page.
	SourceURL SourceType = "url"
	// SourcePDF marks articles ingested from a local PDF file.
	SourcePDF SourceType = "pdf"
)

// Article is the canonical record owned by the relational store. The id is
// assigned at creation, never changes, and is the join key between the
// relational row and every chunk in the vector index.
//
// Content and id are immutable after the first save; Description, Summary,
// Keywords, and Tags may be updated in place.
type Article struct {
	ID            string
	Title         string
	Content       string
	URL           string
	SourceType    SourceType
	Author        string
	PublishedDate *time.Time
	Categories    []string
	CreatedAt     time.Time
	Description   string
	Summary       string
	Keywords      string // comma-joined
	Tags          string // comma-joined
}

// HasCategory reports whether the article carries the exact category label.
func (a *Article) HasCategory(category string) bool {
	for _, c := range a.Categories {
		if strings.TrimSpace(c) == category {
			return true
		}
	}
	return false
}

// Meta builds the denormalized snapshot stored alongside each of the
// article's chunk vectors. It is a copy used for post-filtering search
// results without a relational round trip; the relational row stays
// authoritative.
func (a *Article) Meta() ChunkMeta {
	meta := ChunkMeta{
		ArticleID:  a.ID,
		Title:      a.Title,
		URL:        a.URL,
		SourceType: string(a.SourceType),
		Author:     a.Author,
		Categories: strings.Join(a.Categories, ","),
		Keywords:   a.Keywords,
	}
	if a.PublishedDate != nil {
		meta.PublishedDate = a.PublishedDate.Format(time.RFC3339)
	}
	if !a.CreatedAt.IsZero() {
		meta.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return meta
}
