package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("blockplan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Blockplan training week server. Read players' week plans, their load per day and week, the template catalog and exercise logs. Plans are keyed by player id and ISO week (YYYY-Www)."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWeekPlan, Handler: h.getWeekPlan},
		server.ServerTool{Tool: toolListWeekPlans, Handler: h.listWeekPlans},
		server.ServerTool{Tool: toolGetWeekLoad, Handler: h.getWeekLoad},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolPreviewTemplate, Handler: h.previewTemplate},
		server.ServerTool{Tool: toolGetPlayerLog, Handler: h.getPlayerLog},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resBlockCatalog, Handler: h.blockCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resBlockCatalog = mcp.NewResource(
	"blockplan://block_catalog",
	"Block Catalog",
	mcp.WithResourceDescription("All building blocks with codes, default RPE and duration, colors, and the placeable palette including the special day markers"),
	mcp.WithMIMEType("application/json"),
)
