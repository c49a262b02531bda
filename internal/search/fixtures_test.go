package search

import (
	"testing"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

func fixtureRecords() []catalog.ToolRecord {
	return []catalog.ToolRecord{
		{Name: "github_create_issue", Server: "vcs", Description: "Create an issue on a repository", Category: "development", Source: catalog.SourceMCP, DeferLoading: true},
		{Name: "read_file", Server: "fs", Description: "Read a file from disk", Category: "filesystem", Source: catalog.SourceBuiltin},
		{Name: "write_file", Server: "fs", Description: "Write content to a file on disk", Category: "filesystem", Source: catalog.SourceBuiltin},
		{Name: "list_directory", Server: "fs", Description: "List entries of a directory", Category: "filesystem", Source: catalog.SourceBuiltin},
		{Name: "query_metrics", Server: "prom", Description: "Query time series metrics", Category: "monitoring", Source: catalog.SourceMCP, DeferLoading: true},
		{Name: "create_alert", Server: "prom", Description: "Create an alert rule for a metric", Category: "monitoring", Source: catalog.SourceMCP},
		{Name: "serde_json", Server: "crates", Description: "Serialize and deserialize JSON values", Category: "library", Source: catalog.SourceRustCrate},
		{Name: "code_reviewer", Server: "agents", Description: "Review code changes for bugs", Category: "review", Source: catalog.SourceSubagent},
		{Name: "send_email", Server: "mail", Description: "Send an email message", Category: "communication", Source: catalog.SourceMCP},
		{Name: "github_list_prs", Server: "vcs", Description: "List pull requests in a repository", Category: "development", Source: catalog.SourceMCP},
		{Name: "gitlab_merge", Server: "vcs2", Description: "Merge a request", Category: "development", Source: catalog.SourceMCP},
	}
}

func fixtureCatalog(t testing.TB) *catalog.ToolCatalog {
	t.Helper()
	c, err := catalog.New("fixture-1", fixtureRecords())
	if err != nil {
		t.Fatalf("building fixture catalog: %v", err)
	}
	return c
}

func fixtureIndex(t testing.TB) *Index {
	t.Helper()
	return BuildIndex(fixtureCatalog(t), nil)
}

func resultNames(results []SearchResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Tool.Name
	}
	return names
}
