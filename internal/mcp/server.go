package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/orbit/internal/config"
	"github.com/hpungsan/orbit/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"command", "contact", "constellation", "tag", "interaction"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"command_execute": {
		def:     executeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExecute },
	},
	"command_tokenize": {
		def:     tokenizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTokenize },
	},
	"contact_create": {
		def:     contactCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContactCreate },
	},
	"contact_fetch": {
		def:     contactFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContactFetch },
	},
	"contact_list": {
		def:     contactListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContactList },
	},
	"contact_update": {
		def:     contactUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContactUpdate },
	},
	"contact_delete": {
		def:     contactDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContactDelete },
	},
	"constellation_create": {
		def:     constellationCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleConstellationCreate },
	},
	"constellation_delete": {
		def:     constellationDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleConstellationDelete },
	},
	"constellation_add_member": {
		def:     addMemberToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddMember },
	},
	"constellation_remove_member": {
		def:     removeMemberToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemoveMember },
	},
	"constellation_list": {
		def:     constellationListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleConstellationList },
	},
	"tag_list": {
		def:     tagListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagList },
	},
	"interaction_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"interaction_timeline": {
		def:     timelineToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTimeline },
	},
	"interaction_purge": {
		def:     purgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
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

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "contact_fetch" → "contact").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Orbit tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(exec *ops.Executor, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"orbit",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(exec, cfg)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
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
func Run(exec *ops.Executor, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(exec, cfg, version))
}
