// Package mcpserver exposes the engine facade over the Model Context
// Protocol: an index_file and a reindex_file tool, backed by the
// modelcontextprotocol/go-sdk and google/jsonschema-go stack, with tool
// schemas derived from struct tags, a stdio transport, and a distinct
// error type for malformed tool input.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/cxref/internal/diag"
	"github.com/standardbeagle/cxref/internal/job"
)

// Engine is the subset of the engine facade the MCP tools drive.
type Engine interface {
	Index(input string, args []string, mode job.Mode) (int, error)
	Reindex(filename string, mode job.Mode) (int, error)
}

// Server wraps an mcp.Server exposing the engine's two entry points.
type Server struct {
	engine Engine
	mcp    *mcp.Server
}

// New builds a Server over engine. Call Run to start serving over stdio.
func New(engine Engine) *Server {
	s := &Server{
		engine: engine,
		mcp:    mcp.NewServer(&mcp.Implementation{Name: "cxref-mcp-server", Version: "0.1.0"}, nil),
	}
	s.registerTools()
	return s
}

// Run serves the protocol over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	diag.Trace("mcpserver", "starting stdio transport")
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_file",
		Description: "Index a C/C++ source file, recording its definitions, references, symbol names, and includes.",
	}, s.handleIndex)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reindex_file",
		Description: "Reindex a previously indexed file using its stored compiler arguments.",
	}, s.handleReindex)
}

// IndexInput is the index_file tool's schema, derived from its tags.
type IndexInput struct {
	Path  string   `json:"path" jsonschema:"absolute path to the source file"`
	Args  []string `json:"args,omitempty" jsonschema:"compiler arguments, e.g. -Ipath or -std=c++17"`
	Force bool     `json:"force,omitempty" jsonschema:"reparse even if a cached translation unit is available"`
}

// IndexOutput is the index_file tool's result payload.
type IndexOutput struct {
	JobID int `json:"jobId" jsonschema:"the dispatched job's identifier"`
}

func (s *Server) handleIndex(ctx context.Context, req *mcp.CallToolRequest, input IndexInput) (*mcp.CallToolResult, IndexOutput, error) {
	defer recoverInto("index_file")

	if input.Path == "" {
		return nil, IndexOutput{}, newInvalidParamsError("path parameter is required")
	}
	mode := job.Normal
	if input.Force {
		mode = job.Force
	}
	id, err := s.engine.Index(input.Path, input.Args, mode)
	if err != nil {
		return nil, IndexOutput{}, err
	}
	return textResult(fmt.Sprintf("queued job %d for %s", id, input.Path)), IndexOutput{JobID: id}, nil
}

// ReindexInput is the reindex_file tool's schema, derived from its tags.
type ReindexInput struct {
	Path  string `json:"path" jsonschema:"absolute path to a previously indexed source file"`
	Force bool   `json:"force,omitempty" jsonschema:"reparse even if a cached translation unit is available"`
}

// ReindexOutput is the reindex_file tool's result payload.
type ReindexOutput struct {
	JobID int `json:"jobId" jsonschema:"the dispatched job's identifier"`
}

func (s *Server) handleReindex(ctx context.Context, req *mcp.CallToolRequest, input ReindexInput) (*mcp.CallToolResult, ReindexOutput, error) {
	defer recoverInto("reindex_file")

	if input.Path == "" {
		return nil, ReindexOutput{}, newInvalidParamsError("path parameter is required")
	}
	mode := job.Normal
	if input.Force {
		mode = job.Force
	}
	id, err := s.engine.Reindex(input.Path, mode)
	if err != nil {
		return nil, ReindexOutput{}, err
	}
	return textResult(fmt.Sprintf("queued job %d for %s", id, input.Path)), ReindexOutput{JobID: id}, nil
}

func recoverInto(op string) {
	if r := recover(); r != nil {
		diag.Warn("mcpserver", "panic in %s: %v", op, r)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// invalidParamsError is returned for malformed tool input, as a type
// distinct from the errors the engine itself returns.
type invalidParamsError struct{ msg string }

func (e *invalidParamsError) Error() string { return e.msg }

func newInvalidParamsError(msg string) error { return &invalidParamsError{msg: msg} }
