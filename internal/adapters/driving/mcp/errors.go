// Package mcp provides an MCP (Model Context Protocol) server adapter for deskref.
// It lets AI assistants query the front-desk knowledge base and trigger refreshes.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever is required")

// ErrRefreshUnavailable is returned by the refresh tool when no refresher is wired.
var ErrRefreshUnavailable = errors.New("mcp: refresh is not available")

// ErrStatsUnavailable is returned by the stats tool when no corpus service is wired.
var ErrStatsUnavailable = errors.New("mcp: stats are not available")
