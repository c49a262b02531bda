package mcp

import (
	"fmt"
	"strings"

	"github.com/khanglvm/tool-hub-search/internal/search"
)

// handleToolsList returns the meta-tools with AI-native descriptions.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": s.ToolDefinitions(),
		},
	}
}

// ToolDefinitions returns the meta-tool definitions advertised by
// tools/list. Descriptions name the categories and servers of the current
// snapshot.
func (s *Server) ToolDefinitions() []map[string]interface{} {
	categories, servers := s.catalogFacets()

	tools := []map[string]interface{}{
		{
			"name": "search_tools",
			"description": fmt.Sprintf(`Find the tools that match a capability description.

WHEN TO USE: When you need a capability but don't know which tool provides it.

MODES:
- hybrid (default): keyword relevance plus pattern match
- bm25: keyword relevance only
- regex: case-insensitive pattern over name, then description

CATEGORIES: %s

Example queries: "create issue", "read file", "github_.*"`, categories),
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Natural language query or regex pattern",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        modeNames(),
						"description": "Ranking mode (default hybrid)",
					},
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Only return tools in this category",
					},
					"source": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"mcp", "rust_crate", "subagent", "builtin"},
						"description": "Only return tools from this source",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": fmt.Sprintf("Maximum results (default %d, max %d)", search.DefaultLimit, search.MaxLimit),
					},
				},
				"required": []string{"query"},
			},
		},
		{
			"name": "suggest_tools",
			"description": `Complete a partially typed query with terms and tool names from the catalog.

WHEN TO USE: While composing a search_tools query, to see which words the catalog knows.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"partial": map[string]interface{}{
						"type":        "string",
						"description": "Partial query; the last word is completed",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": fmt.Sprintf("Maximum suggestions (default %d)", search.DefaultLimit),
					},
				},
				"required": []string{"partial"},
			},
		},
		{
			"name": "catalog_stats",
			"description": `Summarize the loaded tool catalog.

Returns: Tool counts by source and category, deferred and always-loaded counts, catalog version.`,
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			"name": "list_by_category",
			"description": fmt.Sprintf(`List every tool in a category.

AVAILABLE CATEGORIES: %s`, categories),
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Category name",
					},
				},
				"required": []string{"category"},
			},
		},
		{
			"name": "list_by_server",
			"description": fmt.Sprintf(`List every tool provided by a server.

AVAILABLE SERVERS: %s`, servers),
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"server": map[string]interface{}{
						"type":        "string",
						"description": "Server name",
					},
				},
				"required": []string{"server"},
			},
		},
		{
			"name":        "list_always_loaded",
			"description": `List the tools that are always loaded into context (not deferred).`,
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			"name": "rebuild_catalog",
			"description": `Reload the tool catalog from its source and rebuild the search index.

WHEN TO USE: After tools were added or removed. Searches keep working during the rebuild.`,
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}

	return tools
}

// catalogFacets renders the current categories and servers for tool
// descriptions.
func (s *Server) catalogFacets() (categories, servers string) {
	idx, err := s.engine.Snapshot()
	if err != nil {
		return "(catalog not loaded)", "(catalog not loaded)"
	}
	return joinOrNone(idx.Categories()), joinOrNone(idx.Servers())
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func modeNames() []string {
	names := make([]string, len(search.Modes))
	for i, m := range search.Modes {
		names[i] = m.String()
	}
	return names
}
