package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ESVigan/auto-renamer/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"rename_preview": {
		def:     previewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePreview },
	},
	"rename_execute": {
		def:     executeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExecute },
	},
	"rename_undo": {
		def:     undoToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUndo },
	},
	"project_code_store": {
		def:     codeStoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodeStore },
	},
	"project_code_list": {
		def:     codeListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodeList },
	},
	"project_code_delete": {
		def:     codeDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodeDelete },
	},
	"diff_rule_store": {
		def:     ruleStoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleStore },
	},
	"diff_rule_list": {
		def:     ruleListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleList },
	},
	"diff_rule_delete": {
		def:     ruleDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleDelete },
	},
	"diff_rule_suggest": {
		def:     ruleSuggestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleSuggest },
	},
	"profile_export": {
		def:     profileExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileExport },
	},
	"profile_import": {
		def:     profileImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileImport },
	},
	"update_check": {
		def:     updateCheckToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateCheck },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
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

// NewServer creates a new MCP server with renamer tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"renamer",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, version)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
