package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="Understanding Goroutines">
  <meta name="author" content="Rob Example">
  <meta property="article:published_time" content="2025-03-15T09:00:00Z">
  <script>console.log("should be stripped")</script>
  <style>body { color: red }</style>
</head>
<body>
  <nav>Home | About</nav>
  <header>Site Header</header>
  <article>
    <h1>Understanding Goroutines</h1>
    <p>Goroutines are lightweight threads managed by the Go runtime.</p>
    <p>They multiplex onto OS threads.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestFromURL_ExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	got, err := NewURLExtractor().FromURL(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Understanding Goroutines", got.Title)
	assert.Equal(t, "Rob Example", got.Author)
	assert.Equal(t, srv.URL, got.URL)
	require.NotNil(t, got.PublishedDate)
	assert.Equal(t, time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC), got.PublishedDate.UTC())

	assert.Contains(t, got.Content, "lightweight threads")
	assert.Contains(t, got.Content, "multiplex onto OS threads")
	assert.NotContains(t, got.Content, "should be stripped")
	assert.NotContains(t, got.Content, "Site Header")
	assert.NotContains(t, got.Content, "Copyright")
}

func TestFromURL_TitleFallsBackToTitleTag(t *testing.T) {
	page := `<html><head><title>Plain Title</title></head>
		<body><p>Some body text here.</p></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := NewURLExtractor().FromURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Plain Title", got.Title)
	assert.Nil(t, got.PublishedDate)
	assert.Empty(t, got.Author)
}

func TestFromURL_UntitledWhenNoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Text without any title.</p></body></html>`))
	}))
	defer srv.Close()

	got, err := NewURLExtractor().FromURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", got.Title)
}

func TestFromURL_HTTPErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewURLExtractor().FromURL(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrSourceUnreachable)
}

func TestFromURL_ConnectionRefusedIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Closed before the request.

	_, err := NewURLExtractor().FromURL(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrSourceUnreachable)
}

func TestFromURL_EmptyPageIsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Empty</title></head><body></body></html>`))
	}))
	defer srv.Close()

	_, err := NewURLExtractor().FromURL(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestFromURL_PrefersArticleOverBody(t *testing.T) {
	page := `<html><body>
		<div>Sidebar cruft that should not appear.</div>
		<article><p>The real story.</p></article>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := NewURLExtractor().FromURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, got.Content, "The real story.")
	assert.NotContains(t, got.Content, "Sidebar cruft")
}

func TestFromPDF_MissingFile(t *testing.T) {
	_, err := FromPDF("/nonexistent/file.pdf")
	assert.ErrorIs(t, err, ErrSourceUnreachable)
}

func TestCleanPDFText(t *testing.T) {
	in := "Title   line\n\n\n\n\nBody  with   spaces\n\ntrailing   \n"
	got := cleanPDFText(in)
	assert.Equal(t, "Title line\n\nBody with spaces\n\ntrailing", got)
}

func TestPDFTitle(t *testing.T) {
	assert.Equal(t, "First Line", pdfTitle("First Line\nSecond", "/tmp/x.pdf"))
	assert.Equal(t, "report", pdfTitle("", "/tmp/report.pdf"))

	long := strings.Repeat("t", 150)
	assert.Equal(t, strings.Repeat("t", 100), pdfTitle(long, "/tmp/x.pdf"))
}
