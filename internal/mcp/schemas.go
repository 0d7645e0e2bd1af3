package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// saveArticleTool returns the tool definition for save_article
func saveArticleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "save_article",
		Description: "Fetch an article from a URL and save it to the knowledge base",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "The URL of the article to save",
				},
				"categories": map[string]interface{}{
					"type":        "array",
					"description": "Categories to tag the article with (e.g., [\"ai\", \"tech\"])",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "3-5 sentence summary (optional)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Key insights or notes, newline-separated (optional)",
				},
				"keywords": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated keywords (optional)",
				},
				"tags": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated free-form tags (optional)",
				},
			},
			Required: []string{"url", "categories"},
		},
	}
}

// savePDFTool returns the tool definition for save_pdf
func savePDFTool() mcp.Tool {
	return mcp.Tool{
		Name:        "save_pdf",
		Description: "Extract text from a local PDF file and save it to the knowledge base",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the PDF file",
				},
				"categories": map[string]interface{}{
					"type":        "array",
					"description": "Categories to tag the article with",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "3-5 sentence summary (optional)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Key insights or notes, newline-separated (optional)",
				},
				"keywords": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated keywords (optional)",
				},
				"tags": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated free-form tags (optional)",
				},
			},
			Required: []string{"file_path", "categories"},
		},
	}
}

// searchTool returns the tool definition for search
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search",
		Description: "Search saved articles by title, keywords, and semantic similarity",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Optional category to filter by",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default: 10)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// listCategoriesTool returns the tool definition for list_categories
func listCategoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_categories",
		Description: "List all categories with article counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getArticleTool returns the tool definition for get_article
func getArticleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_article",
		Description: "Get article metadata by ID (use read_content for full text)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"article_id": map[string]interface{}{
					"type":        "string",
					"description": "The article ID",
				},
			},
			Required: []string{"article_id"},
		},
	}
}

// readContentTool returns the tool definition for read_content
func readContentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "read_content",
		Description: "Read full article content formatted as markdown",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"article_id": map[string]interface{}{
					"type":        "string",
					"description": "The article ID",
				},
			},
			Required: []string{"article_id"},
		},
	}
}

// listArticlesTool returns the tool definition for list_articles
func listArticlesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_articles",
		Description: "List articles with optional category filter and sorting",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Filter by category (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default: 20)",
					"default":     20,
				},
				"sort_by": map[string]interface{}{
					"type":        "string",
					"description": "Sort field (default: created_at)",
					"enum":        []string{"created_at", "title", "published_date"},
					"default":     "created_at",
				},
			},
		},
	}
}

// getRelevantChunksTool returns the tool definition for get_relevant_chunks
func getRelevantChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_relevant_chunks",
		Description: "Get text chunks relevant to a question for RAG-style answering",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The question or search query",
				},
				"article_id": map[string]interface{}{
					"type":        "string",
					"description": "Limit to a specific article (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of chunks (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}
}

// deleteArticleTool returns the tool definition for delete_article
func deleteArticleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_article",
		Description: "Delete an article and its search index entries by ID",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"article_id": map[string]interface{}{
					"type":        "string",
					"description": "The article ID to delete",
				},
			},
			Required: []string{"article_id"},
		},
	}
}

// updateMetadataTool returns the tool definition for update_metadata
func updateMetadataTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_metadata",
		Description: "Update an article's description, summary, keywords, or tags without re-ingesting content",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"article_id": map[string]interface{}{
					"type":        "string",
					"description": "The article ID",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description (optional)",
				},
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "New summary (optional)",
				},
				"keywords": map[string]interface{}{
					"type":        "string",
					"description": "New comma-separated keywords (optional)",
				},
				"tags": map[string]interface{}{
					"type":        "string",
					"description": "New comma-separated tags (optional)",
				},
			},
			Required: []string{"article_id"},
		},
	}
}

// reindexTool returns the tool definition for reindex
func reindexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the vector index from stored articles (use after switching embedding providers)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
