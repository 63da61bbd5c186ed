// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes LifeNote tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/models"
)

// Repository is the note repository the tools operate on.
type Repository interface {
	Append(ctx context.Context, d models.Draft) (*models.Note, error)
	ListForYear(ctx context.Context, year int) ([]models.Note, error)
}

// Server wraps the MCP server with LifeNote tools.
type Server struct {
	mcp  *server.MCPServer
	repo Repository
	year func() int
}

// New creates a new MCP server with all LifeNote tools registered. year
// supplies the default for list_year_notes.
func New(repo Repository, year func() int) *Server {
	s := &Server{repo: repo, year: year}

	s.mcp = server.NewMCPServer(
		"LifeNote",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Append a short journal note. The submit time is recorded automatically. "+
			"See the lifenote://topics resource for the allowed topics."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text; must not be blank")),
		mcp.WithString("topic", mcp.Description("One of diary, health, dev, learning (default diary)"),
			mcp.Enum("diary", "health", "dev", "learning")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("list_year_notes",
		mcp.WithDescription("List all notes of a calendar year, most recent first."),
		mcp.WithNumber("year", mcp.Description("Calendar year (defaults to the current year)")),
	), s.listYearNotes)

	s.mcp.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List the fixed note topics with their labels and emoji."),
	), s.listTopics)

	s.mcp.AddResource(
		mcp.NewResource(topicsURI, "Note Topics",
			mcp.WithResourceDescription("Topics a note can be tagged with and the rules notes follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTopicsResource,
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

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topic := req.GetString("topic", "")

	note, err := s.repo.Append(ctx, models.Draft{Content: content, Topic: models.Topic(topic)})
	if err != nil {
		return mcp.NewToolResultError(apperr.Notice(err)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listYearNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	year := req.GetInt("year", s.year())
	if year <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid year: %d", year)), nil
	}

	notes, err := s.repo.ListForYear(ctx, year)
	if err != nil {
		return mcp.NewToolResultError(apperr.Notice(err)), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no notes in %d", year)), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(models.Topics, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readTopicsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      topicsURI,
			MIMEType: "text/markdown",
			Text:     TopicsGuide(),
		},
	}, nil
}
