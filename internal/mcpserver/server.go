// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes wiki tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gausby/mg-org-wiki/internal/apperr"
	"github.com/gausby/mg-org-wiki/internal/entryservice"
)

// Server wraps the MCP server with wiki tools.
type Server struct {
	mcp *server.MCPServer
	svc *entryservice.Service
}

// New creates a new MCP server with all wiki tools registered.
func New(svc *entryservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"mg-org-wiki",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through wiki entry content, titles, and keywords."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read the full content of a wiki entry."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic name (file name without the .org extension)")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new wiki entry. The standard header (TITLE and "+
			"KEYWORDS lines) is generated; supply the body in org markup with "+
			"[[wiki:...]] links. Read the contract first via the get_entry_contract "+
			"tool or the orgwiki://entry-format resource."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic for the new entry")),
		mcp.WithString("keywords", mcp.Description("Space-separated keyword field")),
		mcp.WithString("body", mcp.Description("Optional org body placed below the header")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("get_entry_contract",
		mcp.WithDescription("Returns the canonical wiki entry format contract. "+
			"Call this before creating entries to ensure correct structure."),
	), s.getEntryContract)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List wiki entries, optionally filtered by keyword."),
		mcp.WithString("keyword", mcp.Description("Optional keyword filter")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all entries that link to the specified entry."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic to find backlinks for")),
	), s.getBacklinks)

	// Resource: entry format contract.
	s.mcp.AddResource(
		mcp.NewResource("orgwiki://entry-format", "Entry Format Contract",
			mcp.WithResourceDescription("Canonical org entry format that all entries must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEntryFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.GetEntry(ctx, topic)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", topic)), nil
	}
	return mcp.NewToolResultText(entry.Content), nil
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	keywords := req.GetString("keywords", "")
	body := req.GetString("body", "")

	entry, err := s.svc.CreateEntry(ctx, topic, keywords, body)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("entry already exists: %s", topic)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", entry.Path)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword := req.GetString("keyword", "")

	// The tool presents a full listing, so page through rather than stop
	// at the service's default page size.
	var paths []string
	for offset := 0; ; {
		items, total, err := s.svc.ListEntries(ctx, 500, offset, keyword, "path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, it := range items {
			paths = append(paths, it.Path)
		}
		offset += len(items)
		if len(items) == 0 || offset >= total {
			break
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no entries"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getEntryContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormatContract), nil
}

func (s *Server) readEntryFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "orgwiki://entry-format",
			MIMEType: "text/markdown",
			Text:     EntryFormatContract,
		},
	}, nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, topic)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}
