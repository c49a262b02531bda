/*
Package mcp implements the MCP server that exposes tool discovery as
meta-tools.

The server uses stdio transport (newline-delimited JSON-RPC 2.0) and
exposes 7 meta-tools:
  - search_tools: Rank catalog tools for a query (bm25, regex or hybrid)
  - suggest_tools: Complete a partial query
  - catalog_stats: Summarize the loaded catalog
  - list_by_category: List the tools of one category
  - list_by_server: List the tools of one server
  - list_always_loaded: List the tools that are never deferred
  - rebuild_catalog: Reload the catalog and swap the index
*/
package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
	"github.com/khanglvm/tool-hub-search/internal/history"
	"github.com/khanglvm/tool-hub-search/internal/jsonx"
	"github.com/khanglvm/tool-hub-search/internal/search"
	"github.com/khanglvm/tool-hub-search/internal/version"
)

// JSON-RPC error codes.
const (
	CodeParseError       = -32700
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32000
	CodeNotReady         = -32002
	CodeRebuildInProcess = -32003
)

// maxLineSize bounds a single JSON-RPC frame.
const maxLineSize = 4 << 20

// CatalogSource loads a fresh catalog for rebuild_catalog.
type CatalogSource func(ctx context.Context) (*catalog.ToolCatalog, error)

// Server represents the tool-hub-search MCP server.
type Server struct {
	engine   *search.Engine
	recorder *history.Recorder
	source   CatalogSource
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder reports every search to r.
func WithRecorder(r *history.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithCatalogSource enables rebuild_catalog.
func WithCatalogSource(src CatalogSource) Option {
	return func(s *Server) { s.source = src }
}

// WithLogger sets the logger. Logs never go to the protocol stream.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server backed by engine.
func NewServer(engine *search.Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves stdin/stdout until stdin is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one request per line from in and writes one response per line
// to out. It returns when in is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := jsonx.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		response := s.handleRequest(ctx, line)
		if response == nil {
			continue
		}
		if err := enc.Encode(response); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	return scanner.Err()
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      interface{}      `json:"id"`
	Method  string           `json:"method"`
	Params  jsonx.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func errorResponse(id interface{}, code int, message string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message},
	}
}

// handleRequest processes one frame. Notifications yield no response.
func (s *Server) handleRequest(ctx context.Context, data []byte) *MCPResponse {
	var req MCPRequest
	if err := jsonx.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, CodeParseError, fmt.Sprintf("invalid JSON-RPC request: %v", err))
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req)
	case "tools/list":
		return s.handleToolsList(&req)
	case "tools/call":
		return s.handleToolsCall(ctx, &req)
	case "ping":
		return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
	}

	if req.ID == nil {
		// notifications/initialized and friends
		return nil
	}
	return errorResponse(req.ID, CodeMethodNotFound, "Method not found")
}

// handleInitialize handles the MCP initialize request.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    version.Name,
				"version": version.Version,
			},
		},
	}
}

// handleToolsCall dispatches a meta-tool call.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params struct {
		Name      string           `json:"name"`
		Arguments jsonx.RawMessage `json:"arguments"`
	}
	if err := jsonx.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}
	if len(params.Arguments) == 0 {
		params.Arguments = jsonx.RawMessage("{}")
	}

	var result interface{}
	var err error

	switch params.Name {
	case "search_tools":
		result, err = s.execSearch(params.Arguments)
	case "suggest_tools":
		result, err = s.execSuggest(params.Arguments)
	case "catalog_stats":
		result, err = s.engine.Stats()
	case "list_by_category":
		result, err = s.execListByCategory(params.Arguments)
	case "list_by_server":
		result, err = s.execListByServer(params.Arguments)
	case "list_always_loaded":
		result, err = s.execListAlwaysLoaded()
	case "rebuild_catalog":
		result, err = s.execRebuild(ctx)
	default:
		return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	if err != nil {
		s.logger.Debug("tool call failed", zap.String("tool", params.Name), zap.Error(err))
		return errorResponse(req.ID, errorCode(err), err.Error())
	}

	text, err := jsonx.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError, fmt.Sprintf("failed to encode result: %v", err))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// invalidArgumentsError marks malformed tool arguments.
type invalidArgumentsError struct{ err error }

func (e *invalidArgumentsError) Error() string { return "invalid arguments: " + e.err.Error() }
func (e *invalidArgumentsError) Unwrap() error { return e.err }

func decodeArgs(raw jsonx.RawMessage, v interface{}) error {
	if err := jsonx.Unmarshal(raw, v); err != nil {
		return &invalidArgumentsError{err: err}
	}
	return nil
}

// errorCode maps a tool error to its JSON-RPC code.
func errorCode(err error) int {
	var argErr *invalidArgumentsError
	switch {
	case errors.As(err, &argErr),
		errors.Is(err, search.ErrInvalidPattern),
		errors.Is(err, search.ErrUnknownMode),
		errors.Is(err, catalog.ErrInvalidSource):
		return CodeInvalidParams
	case errors.Is(err, search.ErrEngineNotReady):
		return CodeNotReady
	case errors.Is(err, search.ErrRebuildInProgress):
		return CodeRebuildInProcess
	default:
		return CodeInternalError
	}
}

// searchArgs are the search_tools arguments.
type searchArgs struct {
	Query    string `json:"query"`
	Mode     string `json:"mode"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Limit    *int   `json:"limit"`
}

// SearchResponse is the search_tools payload.
type SearchResponse struct {
	SearchID string                `json:"searchId"`
	Mode     string                `json:"mode"`
	Results  []search.SearchResult `json:"results"`
}

func (s *Server) execSearch(raw jsonx.RawMessage) (*SearchResponse, error) {
	var args searchArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	mode, err := search.ParseMode(args.Mode)
	if err != nil {
		return nil, err
	}
	opts := []search.Option{search.WithMode(mode), search.WithCategory(args.Category)}
	if args.Source != "" {
		src, err := catalog.ParseSource(args.Source)
		if err != nil {
			return nil, err
		}
		opts = append(opts, search.WithSource(src))
	}
	if args.Limit != nil {
		opts = append(opts, search.WithLimit(*args.Limit))
	}

	start := time.Now()
	results, err := s.engine.Search(args.Query, opts...)
	if err != nil {
		return nil, err
	}

	event := history.NewSearchEvent(args.Query, mode.String(), len(results), time.Since(start))
	s.recorder.Record(event)

	return &SearchResponse{
		SearchID: event.SearchID,
		Mode:     mode.String(),
		Results:  results,
	}, nil
}

type suggestArgs struct {
	Partial string `json:"partial"`
	Limit   *int   `json:"limit"`
}

func (s *Server) execSuggest(raw jsonx.RawMessage) ([]string, error) {
	var args suggestArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	limit := search.DefaultLimit
	if args.Limit != nil {
		limit = *args.Limit
	}
	return s.engine.Suggest(args.Partial, limit)
}

func (s *Server) execListByCategory(raw jsonx.RawMessage) ([]catalog.ToolRecord, error) {
	var args struct {
		Category string `json:"category"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return s.engine.ByCategory(args.Category)
}

func (s *Server) execListByServer(raw jsonx.RawMessage) ([]catalog.ToolRecord, error) {
	var args struct {
		Server string `json:"server"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return s.engine.ByServer(args.Server)
}

func (s *Server) execListAlwaysLoaded() ([]catalog.ToolRecord, error) {
	return s.engine.AlwaysLoaded()
}

func (s *Server) execRebuild(ctx context.Context) (search.RebuildSummary, error) {
	if s.source == nil {
		return search.RebuildSummary{}, errors.New("no catalog source configured")
	}
	cat, err := s.source(ctx)
	if err != nil {
		return search.RebuildSummary{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return s.engine.TryRebuild(cat)
}
