/*
Package benchmark measures tool-hub-search against a loaded catalog.

Two benchmarks are provided:
 1. Token efficiency: context tokens spent on tool definitions when every
    catalog tool is exposed, versus the meta-tools plus the tools that are
    never deferred.
 2. Latency: per-mode query latency (average, p50, p95) for a query set.

Token estimation uses the usual approximation of ~3 characters per token
for JSON.
*/
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
	"github.com/khanglvm/tool-hub-search/internal/jsonx"
	"github.com/khanglvm/tool-hub-search/internal/search"
)

// TokenEstimate represents token consumption estimates.
type TokenEstimate struct {
	ToolCount        int    `json:"toolCount"`
	DefinitionTokens int    `json:"definitionTokens"`
	Description      string `json:"description"`
}

// TokenResult contains comparison results.
type TokenResult struct {
	Catalog        TokenEstimate `json:"catalog"`
	ToolHub        TokenEstimate `json:"toolHub"`
	TokenSavings   int           `json:"tokenSavings"`
	SavingsPercent float64       `json:"savingsPercent"`
}

// CountTokens estimates token count for a JSON structure.
func CountTokens(v interface{}) int {
	data, err := jsonx.Marshal(v)
	if err != nil {
		return 0
	}
	// JSON is more token-dense than natural language
	return len(data) / 3
}

// RunTokenBenchmark compares exposing every tool in c against exposing
// metaTools plus the always-loaded tools.
func RunTokenBenchmark(c *catalog.ToolCatalog, metaTools []map[string]interface{}) *TokenResult {
	tools := c.Tools()
	alwaysLoaded := make([]catalog.ToolRecord, 0, len(tools))
	for _, t := range tools {
		if !t.DeferLoading {
			alwaysLoaded = append(alwaysLoaded, t)
		}
	}

	full := TokenEstimate{
		ToolCount:        len(tools),
		DefinitionTokens: CountTokens(tools),
		Description:      fmt.Sprintf("%d catalog tools exposed directly", len(tools)),
	}

	hubTokens := CountTokens(metaTools)
	if len(alwaysLoaded) > 0 {
		hubTokens += CountTokens(alwaysLoaded)
	}
	hub := TokenEstimate{
		ToolCount:        len(metaTools) + len(alwaysLoaded),
		DefinitionTokens: hubTokens,
		Description:      fmt.Sprintf("%d meta-tools plus %d always-loaded tools", len(metaTools), len(alwaysLoaded)),
	}

	savings := full.DefinitionTokens - hub.DefinitionTokens
	percent := 0.0
	if full.DefinitionTokens > 0 {
		percent = float64(savings) / float64(full.DefinitionTokens) * 100
	}

	return &TokenResult{
		Catalog:        full,
		ToolHub:        hub,
		TokenSavings:   savings,
		SavingsPercent: percent,
	}
}

// DefaultQueries is the query set used when none is given. Every entry is
// also a valid regular expression.
var DefaultQueries = []string{
	"create issue",
	"read file",
	"search documents",
	"send message",
	"list pull requests",
	"screenshot",
	"query metrics",
	"deploy",
}

// LatencyStats summarizes one mode.
type LatencyStats struct {
	Mode    string        `json:"mode"`
	Runs    int           `json:"runs"`
	Skipped int           `json:"skipped"`
	Avg     time.Duration `json:"avg"`
	P50     time.Duration `json:"p50"`
	P95     time.Duration `json:"p95"`
	Max     time.Duration `json:"max"`
}

// LatencyResult is the outcome of RunLatency.
type LatencyResult struct {
	Tools      int            `json:"tools"`
	Queries    int            `json:"queries"`
	Iterations int            `json:"iterations"`
	Modes      []LatencyStats `json:"modes"`
}

// RunLatency runs every query through every mode iterations times.
// Queries that are not valid patterns are skipped in modes that need one.
func RunLatency(ctx context.Context, engine *search.Engine, queries []string, iterations int) (*LatencyResult, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	if len(queries) == 0 {
		queries = DefaultQueries
	}

	stats, err := engine.Stats()
	if err != nil {
		return nil, err
	}

	result := &LatencyResult{
		Tools:      stats.TotalTools,
		Queries:    len(queries),
		Iterations: iterations,
	}

	for _, mode := range search.Modes {
		samples := make([]time.Duration, 0, iterations*len(queries))
		skipped := 0

		for i := 0; i < iterations; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, q := range queries {
				start := time.Now()
				_, err := engine.Search(q, search.WithMode(mode))
				elapsed := time.Since(start)

				if errors.Is(err, search.ErrInvalidPattern) {
					skipped++
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("%s search %q: %w", mode, q, err)
				}
				samples = append(samples, elapsed)
			}
		}

		s := summarize(samples)
		s.Mode = mode.String()
		s.Skipped = skipped
		result.Modes = append(result.Modes, s)
	}

	return result, nil
}

func summarize(samples []time.Duration) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return LatencyStats{
		Runs: len(samples),
		Avg:  total / time.Duration(len(samples)),
		P50:  percentile(samples, 50),
		P95:  percentile(samples, 95),
		Max:  samples[len(samples)-1],
	}
}

// percentile uses the nearest-rank method on sorted samples.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// FormatTokenResult formats the token benchmark for display.
func FormatTokenResult(result *TokenResult) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║           TOKEN EFFICIENCY BENCHMARK RESULTS                 ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("║  📊 FULL CATALOG                                             ║\n")
	sb.WriteString(fmt.Sprintf("║     Tools:   %-6d                                          ║\n", result.Catalog.ToolCount))
	sb.WriteString(fmt.Sprintf("║     Tokens:  ~%-6d                                         ║\n", result.Catalog.DefinitionTokens))
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("║  🚀 TOOL-HUB-SEARCH                                          ║\n")
	sb.WriteString(fmt.Sprintf("║     Tools:   %-6d                                          ║\n", result.ToolHub.ToolCount))
	sb.WriteString(fmt.Sprintf("║     Tokens:  ~%-6d                                         ║\n", result.ToolHub.DefinitionTokens))
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("║  💰 SAVINGS                                                  ║\n")
	sb.WriteString(fmt.Sprintf("║     Tokens saved: ~%-6d                                    ║\n", result.TokenSavings))
	sb.WriteString(fmt.Sprintf("║     Reduction:    %5.1f%%                                     ║\n", result.SavingsPercent))
	sb.WriteString("║                                                              ║\n")
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}

// FormatLatencyResult formats the latency benchmark for display.
func FormatLatencyResult(result *LatencyResult) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║              SPEED BENCHMARK (Query Latency)                 ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Tools: %-6d Queries: %-4d Iterations: %-5d              ║\n",
		result.Tools, result.Queries, result.Iterations))
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %-8s %8s %12s %12s %12s %12s\n", "MODE", "RUNS", "AVG", "P50", "P95", "MAX"))
	for _, m := range result.Modes {
		sb.WriteString(fmt.Sprintf("  %-8s %8d %12v %12v %12v %12v\n",
			m.Mode, m.Runs, m.Avg, m.P50, m.P95, m.Max))
		if m.Skipped > 0 {
			sb.WriteString(fmt.Sprintf("  %-8s %d queries skipped (invalid pattern)\n", "", m.Skipped))
		}
	}

	return sb.String()
}
