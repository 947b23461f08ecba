package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/specforge/internal/config"
	"github.com/hpungsan/specforge/internal/db"
	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/ops"
	"github.com/hpungsan/specforge/internal/repair"
	"github.com/hpungsan/specforge/internal/strategy"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	repo    *db.Repository
	cfg     *config.Config
	factory *strategy.Factory
	logger  *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := db.NewRepository(deps.DB)
	return &Handlers{
		repo: repo,
		cfg:  cfg,
		factory: strategy.NewFactory(strategy.Deps{
			Repo:                repo,
			Generator:           deps.Generator,
			Prompts:             deps.Prompts,
			Logger:              logger,
			DescriptionMaxChars: cfg.DescriptionMaxChars,
		}),
		logger: logger,
	}
}

// Request types for each tool

// CreateRequest represents the arguments for plan_create.
type CreateRequest struct {
	UserInput string `json:"user_input"`
}

// ProjectRequest represents the arguments for plan_predict and plan_optimize.
type ProjectRequest struct {
	ProjectID string `json:"project_id"`
}

// IDRequest represents the arguments for project_fetch and project_delete.
type IDRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for project_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ExportRequest represents the arguments for project_export.
type ExportRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`
}

// RepairRequest represents the arguments for json_repair.
type RepairRequest struct {
	Text string `json:"text"`
}

// RepairOutput is the result of json_repair.
type RepairOutput struct {
	Cleaned string `json:"cleaned"`
	Value   any    `json:"value"`
}

// Handler implementations

// HandleCreate handles the plan_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Plan(ctx, h.factory, h.repo, ops.PlanInput{
		Strategy:  strategy.NameCreate,
		UserInput: input.UserInput,
	})
	if err != nil {
		return h.failure("plan_create", err), nil
	}

	return successResult(result)
}

// HandlePredict handles the plan_predict tool call.
func (h *Handlers) HandlePredict(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.runOnProject(ctx, req, strategy.NamePredict)
}

// HandleOptimize handles the plan_optimize tool call.
func (h *Handlers) HandleOptimize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.runOnProject(ctx, req, strategy.NameOptimize)
}

func (h *Handlers) runOnProject(ctx context.Context, req mcp.CallToolRequest, name string) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Plan(ctx, h.factory, h.repo, ops.PlanInput{
		Strategy:  name,
		ProjectID: input.ProjectID,
	})
	if err != nil {
		return h.failure("plan_"+name, err), nil
	}

	return successResult(result)
}

// HandleFetch handles the project_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.repo, ops.FetchInput{ID: input.ID})
	if err != nil {
		return h.failure("project_fetch", err), nil
	}

	return successResult(result)
}

// HandleList handles the project_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.repo, ops.ListInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return h.failure("project_list", err), nil
	}

	return successResult(result)
}

// HandleExport handles the project_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.repo, h.cfg, ops.ExportInput{
		ID:     input.ID,
		Format: input.Format,
		Path:   input.Path,
	})
	if err != nil {
		return h.failure("project_export", err), nil
	}

	return successResult(result)
}

// HandleDelete handles the project_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.repo, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return h.failure("project_delete", err), nil
	}

	return successResult(result)
}

// HandleRepair handles the json_repair tool call.
func (h *Handlers) HandleRepair(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RepairRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	cleaned, err := repair.Sanitize(input.Text)
	if err != nil {
		return errorResult(err), nil
	}
	value, err := repair.Parse(cleaned)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(RepairOutput{Cleaned: cleaned, Value: value})
}

// Result helpers

// failure logs internal errors with their cause before they are redacted.
func (h *Handlers) failure(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, errors.ErrInternal) {
		h.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	}
	return errorResult(err)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if fErr, ok := errors.As(err); ok {
		message := fErr.Message
		// Keep wrapper context, e.g. "project 2: ..."
		if fErr != err && fErr.Code != errors.ErrInternal {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    fErr.Code,
			"message": message,
			"status":  fErr.Status,
		}
		if fErr.Code != errors.ErrInternal && fErr.Details != nil {
			errorObj["details"] = fErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
