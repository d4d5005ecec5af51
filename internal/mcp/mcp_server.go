// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the govscope MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"govscope Governance Analysis Server",
		baseCfg.Version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: compute_concentration ---
	s.AddTool(mcp.NewTool("compute_concentration",
		mcp.WithDescription("Compute Gini, HHI and top-N shares of an explicit participant to count map."),
		mcp.WithObject("counts", mcp.Description("Map of participant name to non-negative activity count."), mcp.Required()),
		mcp.WithString("top_n", mcp.Description("Comma-separated top-N cut-offs (defaults to 1,3,5,10).")),
	), h.handleComputeConcentration)

	// --- 2. Tool: get_concentration ---
	s.AddTool(mcp.NewTool("get_concentration",
		mcp.WithDescription("Compute the concentration of every governance activity over the configured record streams."),
		mcp.WithString("activities", mcp.Description("Comma-separated activities (merges, reviews, releases, contributions, comments, nacks).")),
		mcp.WithString("top_n", mcp.Description("Comma-separated top-N cut-offs.")),
	), h.handleGetConcentration)

	// --- 3. Tool: get_network_metrics ---
	s.AddTool(mcp.NewTool("get_network_metrics",
		mcp.WithDescription("Build one influence network and compute per-participant centrality."),
		mcp.WithString("relation", mcp.Description("Network relation."), mcp.Required(), mcp.Enum("review", "merge", "communication")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of top edges returned.")),
	), h.handleGetNetworkMetrics)

	// --- 4. Tool: get_yearly_trend ---
	s.AddTool(mcp.NewTool("get_yearly_trend",
		mcp.WithDescription("Compute the per-year concentration trend of one activity."),
		mcp.WithString("activity", mcp.Description("Activity to trend."), mcp.Required(), mcp.Enum("merges", "reviews", "releases", "contributions", "comments", "nacks")),
	), h.handleGetYearlyTrend)

	return s
}

// StartMCPServer starts the govscope MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
