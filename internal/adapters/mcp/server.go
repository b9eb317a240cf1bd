// Package mcpadapter exposes the classifier as Model Context Protocol tools so officer
// assistants can triage petition text without going through the HTTP API.
package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

const (
	ServerName    = "petition-triage"
	ServerVersion = "1.0.0"

	maxSuggestions = 10
)

type Services struct {
	Advisor ports.ClassificationAdvisor
	Catalog ports.CatalogService
	// Reader is optional; without it the get_petition tool is not registered.
	Reader ports.PetitionReader
}

type Server struct {
	svc    Services
	mcp    *server.MCPServer
	logger *slog.Logger
}

func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:    svc,
		logger: logger,
		mcp: server.NewMCPServer(ServerName, ServerVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("classify_petition",
		mcp.WithDescription("Classify petition text into department, category and urgency without saving it."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Petition title")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Full petition text")),
		mcp.WithString("location", mcp.Description("Optional location of the grievance")),
	), s.classifyPetition)

	s.mcp.AddTool(mcp.NewTool("suggest_classification",
		mcp.WithDescription("Rank the most likely departments for petition text, each with its best category."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Petition text to analyse")),
		mcp.WithNumber("top_n", mcp.Description("Number of suggestions, 1 to 10"), mcp.Min(1), mcp.Max(maxSuggestions)),
	), s.suggestClassification)

	s.mcp.AddTool(mcp.NewTool("list_departments",
		mcp.WithDescription("List departments petitions can be routed to."),
	), s.listDepartments)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List active categories, optionally for one department."),
		mcp.WithNumber("department_id", mcp.Description("Restrict to this department")),
	), s.listCategories)

	if s.svc.Reader != nil {
		s.mcp.AddTool(mcp.NewTool("get_petition",
			mcp.WithDescription("Fetch a petition with its current classification."),
			mcp.WithNumber("petition_id", mcp.Required(), mcp.Description("Petition id")),
		), s.getPetition)
	}
}

// Serve speaks MCP over the given streams until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(io.Discard, "", 0))
	s.logger.Info("mcp_server_started", "name", ServerName, "version", ServerVersion)
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}

func (s *Server) classifyPetition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.svc.Advisor.Preview(ctx, domain.PetitionText{
		Title:       title,
		Description: description,
		Location:    req.GetString("location", ""),
	})
	if err != nil {
		return s.toolError("classify_petition", err), nil
	}
	return jsonResult(result)
}

func (s *Server) suggestClassification(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topN := req.GetInt("top_n", 0)
	if topN > maxSuggestions {
		topN = maxSuggestions
	}
	set, err := s.svc.Advisor.Suggest(ctx, text, topN)
	if err != nil {
		return s.toolError("suggest_classification", err), nil
	}
	return jsonResult(set)
}

func (s *Server) listDepartments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	departments, err := s.svc.Catalog.Departments(ctx)
	if err != nil {
		return s.toolError("list_departments", err), nil
	}
	return jsonResult(departments)
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter domain.CategoryFilter
	if id := int64(req.GetInt("department_id", 0)); id > 0 {
		filter.DepartmentID = &id
	}
	categories, err := s.svc.Catalog.Categories(ctx, filter)
	if err != nil {
		return s.toolError("list_categories", err), nil
	}
	return jsonResult(categories)
}

func (s *Server) getPetition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("petition_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	petition, err := s.svc.Reader.GetByID(ctx, int64(id))
	if err != nil {
		return s.toolError("get_petition", err), nil
	}
	return jsonResult(petition)
}

// toolError reports domain failures to the client as tool errors; only unexpected
// failures are logged.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrPetitionNotFound),
		domain.IsKind(err, domain.ErrCatalogUnavailable):
		return mcp.NewToolResultError(err.Error())
	default:
		s.logger.Error("mcp_tool_failed", "tool", tool, "error", err)
		return mcp.NewToolResultError("internal error")
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
