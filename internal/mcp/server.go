package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/articlekb-mcp/internal/embedder"
	"github.com/dshills/articlekb-mcp/internal/extractor"
	"github.com/dshills/articlekb-mcp/internal/indexer"
	"github.com/dshills/articlekb-mcp/internal/searcher"
	"github.com/dshills/articlekb-mcp/internal/storage"
	"github.com/dshills/articlekb-mcp/internal/vectorindex"
)

const (
	// ServerName is the MCP server name
	ServerName = "articlekb-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDataDir is the default location for databases
	DefaultDataDir = "~/.articlekb/data"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	store     *storage.ArticleStore
	index     *vectorindex.Index
	emb       embedder.Embedder
	indexer   *indexer.Indexer
	searcher  *searcher.Searcher
	extractor *extractor.URLExtractor
}

// NewServer creates a new MCP server instance rooted at dataDir.
func NewServer(dataDir string) (*Server, error) {
	if dataDir == "" || dataDir == DefaultDataDir {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".articlekb", "data")
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.Open(context.Background(), dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	// The vector index is partitioned by provider so dimensions never mix.
	index, err := vectorindex.Open(dataDir, emb.Provider())
	if err != nil {
		_ = store.Close()
		_ = emb.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		store:     store,
		index:     index,
		emb:       emb,
		indexer:   indexer.New(store, index, emb),
		searcher:  searcher.New(store, index, emb),
		extractor: extractor.NewURLExtractor(),
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.store.Close()
		_ = s.index.Close()
		_ = s.emb.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(saveArticleTool(), s.handleSaveArticle)
	s.mcp.AddTool(savePDFTool(), s.handleSavePDF)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(listCategoriesTool(), s.handleListCategories)
	s.mcp.AddTool(getArticleTool(), s.handleGetArticle)
	s.mcp.AddTool(readContentTool(), s.handleReadContent)
	s.mcp.AddTool(listArticlesTool(), s.handleListArticles)
	s.mcp.AddTool(getRelevantChunksTool(), s.handleGetRelevantChunks)
	s.mcp.AddTool(deleteArticleTool(), s.handleDeleteArticle)
	s.mcp.AddTool(updateMetadataTool(), s.handleUpdateMetadata)
	s.mcp.AddTool(reindexTool(), s.handleReindex)
}
