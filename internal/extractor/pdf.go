package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dshills/articlekb-mcp/pkg/types"
)

var (
	spaceRuns   = regexp.MustCompile(` +`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// FromPDF extracts plain text from a local PDF file. The title comes from
// the first non-empty line of text, falling back to the filename stem.
func FromPDF(path string) (*types.ExtractedContent, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	content := cleanPDFText(buf.String())
	if content == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, path)
	}

	return &types.ExtractedContent{
		Title:   pdfTitle(content, path),
		Content: content,
	}, nil
}

// cleanPDFText normalizes extraction artifacts: runs of spaces collapse to
// one, runs of blank lines to a single blank line.
func cleanPDFText(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// pdfTitle picks the first non-empty line, capped at 100 characters, falling
// back to the filename stem.
func pdfTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			if runes := []rune(line); len(runes) > 100 {
				return string(runes[:100])
			}
			return line
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
