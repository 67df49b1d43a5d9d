// Package mcp exposes the tracker as MCP tools over stdio, so an agent can
// manage professors, memory, drafts, and backups directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/profreach/internal/config"
	"github.com/hpungsan/profreach/internal/oracle"
	"github.com/hpungsan/profreach/internal/repo"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"professor_add": {
		def:     professorAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfessorAdd },
	},
	"professor_list": {
		def:     professorListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfessorList },
	},
	"professor_get": {
		def:     professorGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfessorGet },
	},
	"professor_update": {
		def:     professorUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfessorUpdate },
	},
	"professor_delete": {
		def:     professorDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfessorDelete },
	},
	"professor_lookup": {
		def:     professorLookupToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfessorLookup },
	},
	"profile_get": {
		def:     profileGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileGet },
	},
	"memory_add": {
		def:     memoryAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMemoryAdd },
	},
	"memory_list": {
		def:     memoryListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMemoryList },
	},
	"draft_list": {
		def:     draftListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDraftList },
	},
	"email_draft": {
		def:     emailDraftToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEmailDraft },
	},
	"backup_export": {
		def:     backupExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackupExport },
	},
	"backup_import": {
		def:     backupImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackupImport },
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

// NewServer creates a new MCP server with profreach tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(r *repo.Repo, ai oracle.Oracle, cfg *config.Config, exportsDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"profreach",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(r, ai, exportsDir)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
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
func Run(r *repo.Repo, ai oracle.Oracle, cfg *config.Config, exportsDir, version string) error {
	s := NewServer(r, ai, cfg, exportsDir, version)
	return server.ServeStdio(s)
}
