package mcp

import (
	"database/sql"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/specforge/internal/config"
	"github.com/hpungsan/specforge/internal/llm"
	"github.com/hpungsan/specforge/internal/prompts"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"plan_create": {
		def:     planCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"plan_predict": {
		def:     planPredictToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePredict },
	},
	"plan_optimize": {
		def:     planOptimizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleOptimize },
	},
	"project_fetch": {
		def:     projectFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"project_list": {
		def:     projectListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"project_export": {
		def:     projectExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"project_delete": {
		def:     projectDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"json_repair": {
		def:     jsonRepairToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRepair },
	},
}

// Deps are the collaborators shared by all tool handlers.
type Deps struct {
	DB        *sql.DB
	Config    *config.Config
	Generator llm.Generator
	Prompts   *prompts.Set
	Logger    *zap.Logger
}

// AllToolNames returns all valid tool names in sorted order.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the planning tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"specforge",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	disabled := make(map[string]bool)
	for _, name := range h.cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(deps Deps, version string) error {
	return server.ServeStdio(NewServer(deps, version))
}
