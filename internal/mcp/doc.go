// Package mcp exposes the knowledge base over the Model Context Protocol.
// The server speaks stdio; all logging must go to stderr so the protocol
// stream stays clean.
package mcp
