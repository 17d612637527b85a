package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query     string   `json:"query" jsonschema:"the guest situation or question to look up"`
	TopK      *int     `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default from configuration)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score in [0,1] (default from configuration)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Query     string        `json:"query"`
	IndexID   string        `json:"index_id"`
	TopK      int           `json:"top_k"`
	Threshold float64       `json:"threshold"`
	Count     int           `json:"count"`
	Results   []ChunkOutput `json:"results"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	DocumentID string  `json:"document_id"`
	Heading    string  `json:"heading,omitempty"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	Position   int     `json:"position"`
}

// RefreshInput is the (empty) input schema for the refresh tool.
type RefreshInput struct{}

// RefreshOutput is the output schema for the refresh tool.
type RefreshOutput struct {
	Outcome   string   `json:"outcome"`
	Reason    string   `json:"reason,omitempty"`
	IndexID   string   `json:"index_id"`
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Failed    []string `json:"failed,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	IndexID      string         `json:"index_id"`
	BuiltAt      string         `json:"built_at,omitempty"`
	Documents    int            `json:"documents"`
	Chunks       int            `json:"chunks"`
	Scorer       string         `json:"scorer"`
	ChunkSize    int            `json:"chunk_size"`
	ChunkOverlap int            `json:"chunk_overlap"`
	Errors       int            `json:"errors"`
	Warnings     int            `json:"warnings"`
	Formats      map[string]int `json:"formats"`
	DocumentIDs  []string       `json:"document_ids"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find the knowledge-base passages most relevant to a guest situation",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh",
		Description: "Rescan the document sources and rebuild the index if anything changed",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Describe the live index: documents, chunks, scorer and chunking settings",
	}, s.handleStats)
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	opts := domain.QueryOptions{TopK: input.TopK, Threshold: input.Threshold}
	res, err := s.ports.Retriever.Query(ctx, input.Query, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Query:     res.Query,
		IndexID:   res.IndexID,
		TopK:      res.TopK,
		Threshold: res.Threshold,
		Count:     res.Len(),
		Results:   make([]ChunkOutput, len(res.Results)),
	}
	for i, sc := range res.Results {
		output.Results[i] = ChunkOutput{
			DocumentID: sc.Chunk.DocumentID,
			Heading:    sc.Chunk.Heading,
			Content:    sc.Chunk.Content,
			Score:      sc.Score,
			Position:   sc.Chunk.Position,
		}
	}
	return nil, output, nil
}

// handleRefresh handles the refresh tool invocation. A failed build is
// reported in the output; the previous index stays live.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	if s.ports.Refresher == nil {
		return nil, RefreshOutput{}, ErrRefreshUnavailable
	}

	res, err := s.ports.Refresher.Refresh(ctx)
	if res == nil {
		return nil, RefreshOutput{}, err
	}

	output := RefreshOutput{
		Outcome:   string(res.Outcome),
		Reason:    res.Reason,
		IndexID:   res.IndexID,
		Documents: res.Report.Documents,
		Chunks:    res.Report.Chunks,
		Failed:    res.Report.Failed(),
	}
	for _, w := range res.Report.Warnings {
		output.Warnings = append(output.Warnings, w.Code+": "+w.Message)
	}
	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if s.ports.Corpus == nil {
		return nil, StatsOutput{}, ErrStatsUnavailable
	}
	stats, err := s.ports.Corpus.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	output := StatsOutput{
		IndexID:      stats.IndexID,
		Documents:    stats.Documents,
		Chunks:       stats.Chunks,
		Scorer:       stats.Scorer,
		ChunkSize:    stats.ChunkSize,
		ChunkOverlap: stats.ChunkOverlap,
		Errors:       stats.Errors,
		Warnings:     stats.Warnings,
		Formats:      make(map[string]int, len(stats.Formats)),
		DocumentIDs:  stats.DocumentIDs,
	}
	if !stats.BuiltAt.IsZero() {
		output.BuiltAt = stats.BuiltAt.Format(time.RFC3339)
	}
	for f, n := range stats.Formats {
		output.Formats[string(f)] = n
	}
	return nil, output, nil
}
