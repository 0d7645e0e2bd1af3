// Package extractor turns external sources (web pages, PDF files) into
// plain-text article content plus whatever metadata the source exposes.
// Extraction is best-effort: a missing author or date is fine, missing
// content is not.
package extractor
