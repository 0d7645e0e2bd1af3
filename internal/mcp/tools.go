package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/articlekb-mcp/internal/extractor"
	"github.com/dshills/articlekb-mcp/internal/storage"
	"github.com/dshills/articlekb-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeArticleNotFound   = -32001 // Article ID does not exist
	ErrorCodeSourceUnreachable = -32002 // URL or file could not be fetched
	ErrorCodeEmptyQuery        = -32004 // Query parameter is empty
)

// excerptLength caps the excerpt carried by each search result.
const excerptLength = 500

// handleSaveArticle handles the save_article tool invocation
func (s *Server) handleSaveArticle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	url, ok := args["url"].(string)
	if !ok || url == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "url parameter is required", map[string]interface{}{
			"param":  "url",
			"reason": "missing or empty",
		})
	}

	extracted, err := s.extractor.FromURL(ctx, url)
	if err != nil {
		return nil, newMCPError(ErrorCodeSourceUnreachable, "failed to extract article", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}

	article := &types.Article{
		Title:         extracted.Title,
		Content:       extracted.Content,
		URL:           extracted.URL,
		SourceType:    types.SourceURL,
		Author:        extracted.Author,
		PublishedDate: extracted.PublishedDate,
		Categories:    getStringList(args, "categories"),
		Summary:       getStringDefault(args, "summary", ""),
		Description:   getStringDefault(args, "description", ""),
		Keywords:      getStringDefault(args, "keywords", ""),
		Tags:          getStringDefault(args, "tags", ""),
	}

	if err := s.indexer.SaveArticle(ctx, article); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to save article", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"id":             article.ID,
		"title":          article.Title,
		"categories":     article.Categories,
		"content_length": len(article.Content),
	})), nil
}

// handleSavePDF handles the save_pdf tool invocation
func (s *Server) handleSavePDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_path parameter is required", map[string]interface{}{
			"param":  "file_path",
			"reason": "missing or empty",
		})
	}

	extracted, err := extractor.FromPDF(filePath)
	if err != nil {
		return nil, newMCPError(ErrorCodeSourceUnreachable, "failed to extract pdf", map[string]interface{}{
			"file_path": filePath,
			"error":     err.Error(),
		})
	}

	article := &types.Article{
		Title:         extracted.Title,
		Content:       extracted.Content,
		SourceType:    types.SourcePDF,
		Author:        extracted.Author,
		PublishedDate: extracted.PublishedDate,
		Categories:    getStringList(args, "categories"),
		Summary:       getStringDefault(args, "summary", ""),
		Description:   getStringDefault(args, "description", ""),
		Keywords:      getStringDefault(args, "keywords", ""),
		Tags:          getStringDefault(args, "tags", ""),
	}

	if err := s.indexer.SaveArticle(ctx, article); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to save article", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"id":             article.ID,
		"title":          article.Title,
		"categories":     article.Categories,
		"content_length": len(article.Content),
	})), nil
}

// handleSearch handles the search tool invocation
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	category := getStringDefault(args, "category", "")
	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results, err := s.searcher.Search(ctx, query, category, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	out := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		out = append(out, map[string]interface{}{
			"id":         r.Article.ID,
			"title":      r.Article.Title,
			"score":      roundScore(r.Score),
			"url":        r.Article.URL,
			"categories": r.Article.Categories,
			"author":     r.Article.Author,
			"excerpt":    searchExcerpt(r),
		})
	}

	return mcp.NewToolResultText(formatJSONList(out)), nil
}

// handleListCategories handles the list_categories tool invocation
func (s *Server) handleListCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list categories", map[string]interface{}{
			"error": err.Error(),
		})
	}

	out := make([]map[string]interface{}, 0, len(categories))
	for _, c := range categories {
		out = append(out, map[string]interface{}{"name": c.Name, "count": c.Count})
	}
	return mcp.NewToolResultText(formatJSONList(out)), nil
}

// handleGetArticle handles the get_article tool invocation
func (s *Server) handleGetArticle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	articleID, err := requireArticleID(request)
	if err != nil {
		return nil, err
	}

	article, err := s.store.Get(ctx, articleID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeArticleNotFound, "article not found", map[string]interface{}{
			"article_id": articleID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get article", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"id":             article.ID,
		"title":          article.Title,
		"content_length": len(article.Content),
		"url":            article.URL,
		"source_type":    string(article.SourceType),
		"author":         article.Author,
		"categories":     article.Categories,
		"created_at":     article.CreatedAt.Format(time.RFC3339),
		"description":    article.Description,
		"summary":        article.Summary,
		"keywords":       article.Keywords,
		"tags":           article.Tags,
	}
	if article.PublishedDate != nil {
		response["published_date"] = article.PublishedDate.Format(time.RFC3339)
	} else {
		response["published_date"] = nil
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReadContent handles the read_content tool invocation
func (s *Server) handleReadContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	articleID, err := requireArticleID(request)
	if err != nil {
		return nil, err
	}

	article, err := s.store.Get(ctx, articleID)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultText(fmt.Sprintf("Article not found: %s", articleID)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read article", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatArticleMarkdown(article)), nil
}

// handleListArticles handles the list_articles tool invocation
func (s *Server) handleListArticles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	category := getStringDefault(args, "category", "")
	limit := getIntDefault(args, "limit", 20)
	sortBy := getStringDefault(args, "sort_by", "created_at")

	articles, err := s.store.List(ctx, category, sortBy, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list articles", map[string]interface{}{
			"error": err.Error(),
		})
	}

	out := make([]map[string]interface{}, 0, len(articles))
	for _, a := range articles {
		out = append(out, map[string]interface{}{
			"id":         a.ID,
			"title":      a.Title,
			"categories": a.Categories,
			"author":     a.Author,
			"created_at": a.CreatedAt.Format(time.RFC3339),
			"summary":    a.Summary,
			"keywords":   a.Keywords,
		})
	}
	return mcp.NewToolResultText(formatJSONList(out)), nil
}

// handleGetRelevantChunks handles the get_relevant_chunks tool invocation
func (s *Server) handleGetRelevantChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	articleID := getStringDefault(args, "article_id", "")
	limit := getIntDefault(args, "limit", 5)

	hits, err := s.searcher.RelevantChunks(ctx, query, articleID, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "chunk retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	out := make([]map[string]interface{}, 0, len(hits))
	for _, h := range hits {
		out = append(out, map[string]interface{}{
			"article_id": h.ArticleID,
			"title":      h.Title,
			"content":    h.Content,
			"score":      roundScore(h.Score),
		})
	}
	return mcp.NewToolResultText(formatJSONList(out)), nil
}

// handleDeleteArticle handles the delete_article tool invocation
func (s *Server) handleDeleteArticle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	articleID, err := requireArticleID(request)
	if err != nil {
		return nil, err
	}

	existed, err := s.indexer.DeleteArticle(ctx, articleID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to delete article", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"id":      articleID,
		"deleted": existed,
	})), nil
}

// handleUpdateMetadata handles the update_metadata tool invocation
func (s *Server) handleUpdateMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	articleID, ok := args["article_id"].(string)
	if !ok || articleID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "article_id parameter is required", map[string]interface{}{
			"param":  "article_id",
			"reason": "missing or empty",
		})
	}

	// Only keys present in the request are updated; an explicit empty string
	// clears the field.
	patch := storage.MetadataPatch{
		Description: getOptionalString(args, "description"),
		Summary:     getOptionalString(args, "summary"),
		Keywords:    getOptionalString(args, "keywords"),
		Tags:        getOptionalString(args, "tags"),
	}

	updated, err := s.store.UpdateMetadata(ctx, articleID, patch)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to update metadata", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if !updated {
		return nil, newMCPError(ErrorCodeArticleNotFound, "article not found", map[string]interface{}{
			"article_id": articleID,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"id":      articleID,
		"updated": true,
	})), nil
}

// handleReindex handles the reindex tool invocation
func (s *Server) handleReindex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	processed, err := s.indexer.Reindex(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "reindex failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"reindexed": processed,
		"provider":  s.emb.Provider(),
	})), nil
}

// Helper functions

// requireArticleID extracts the mandatory article_id parameter.
func requireArticleID(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	articleID, ok := args["article_id"].(string)
	if !ok || articleID == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "article_id parameter is required", map[string]interface{}{
			"param":  "article_id",
			"reason": "missing or empty",
		})
	}
	return articleID, nil
}

// searchExcerpt picks the excerpt for a search result: the best matched
// chunk when the semantic stage supplied one, the head of the content
// otherwise.
func searchExcerpt(r types.SearchResult) string {
	text := r.Article.Content
	if len(r.MatchedChunks) > 0 {
		text = r.MatchedChunks[0]
	}
	if runes := []rune(text); len(runes) > excerptLength {
		return string(runes[:excerptLength])
	}
	return text
}

// formatArticleMarkdown renders an article the way read_content returns it.
func formatArticleMarkdown(a *types.Article) string {
	source := a.URL
	if source == "" {
		source = string(a.SourceType)
	}
	author := a.Author
	if author == "" {
		author = "(unknown)"
	}

	lines := []string{
		fmt.Sprintf("# %s", a.Title),
		"",
		fmt.Sprintf("- Categories: %s", strings.Join(a.Categories, ", ")),
		fmt.Sprintf("- Author: %s", author),
		fmt.Sprintf("- Source: %s", source),
		fmt.Sprintf("- Saved: %s", a.CreatedAt.Format("2006-01-02 15:04")),
	}

	if a.Summary != "" {
		lines = append(lines, "", "## Summary", a.Summary)
	}
	if a.Description != "" {
		lines = append(lines, "", "## Notes", a.Description)
	}

	lines = append(lines, "", "---", "", a.Content)
	return strings.Join(lines, "\n")
}

// roundScore rounds relevance scores to three decimals for stable output.
func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// formatJSONList formats a slice of maps as indented JSON
func formatJSONList(data []map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringList extracts a string array parameter
func getStringList(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getOptionalString returns a pointer to the value when the key is present
// and a string, nil otherwise.
func getOptionalString(args map[string]interface{}, key string) *string {
	if val, ok := args[key].(string); ok {
		return &val
	}
	return nil
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
