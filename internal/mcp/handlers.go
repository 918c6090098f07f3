package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/ops"
	"github.com/ESVigan/auto-renamer/internal/update"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	version string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, version string) *Handlers {
	return &Handlers{db: db, cfg: cfg, version: version}
}

// Request types for each tool

// PreviewRequest represents the arguments for rename_preview and rename_execute.
type PreviewRequest struct {
	Date  string   `json:"date,omitempty"`
	Paths []string `json:"paths"`
}

// CodeStoreRequest represents the arguments for project_code_store.
type CodeStoreRequest struct {
	Code     string `json:"code"`
	FullName string `json:"full_name"`
}

// CodeDeleteRequest represents the arguments for project_code_delete.
type CodeDeleteRequest struct {
	ID string `json:"id"`
}

// RuleStoreRequest represents the arguments for diff_rule_store.
type RuleStoreRequest struct {
	DiffNum  string `json:"diff_num"`
	FullName string `json:"full_name,omitempty"`
	Abbr     string `json:"abbr,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

// RuleDeleteRequest represents the arguments for diff_rule_delete.
type RuleDeleteRequest struct {
	ID string `json:"id"`
}

// RuleSuggestRequest represents the arguments for diff_rule_suggest.
type RuleSuggestRequest struct {
	Field string `json:"field"`
}

// ProfileExportRequest represents the arguments for profile_export.
type ProfileExportRequest struct {
	Path string `json:"path,omitempty"`
	Name string `json:"name,omitempty"`
}

// ProfileImportRequest represents the arguments for profile_import.
type ProfileImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandlePreview handles the rename_preview tool call.
func (h *Handlers) HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PreviewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Preview(h.db, h.cfg, ops.PreviewInput{
		Date:  input.Date,
		Paths: input.Paths,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExecute handles the rename_execute tool call.
func (h *Handlers) HandleExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PreviewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Execute(h.db, h.cfg, ops.ExecuteInput{
		Date:  input.Date,
		Paths: input.Paths,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUndo handles the rename_undo tool call.
func (h *Handlers) HandleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Undo(h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCodeStore handles the project_code_store tool call.
func (h *Handlers) HandleCodeStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeStoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.StoreCode(h.db, ops.StoreCodeInput{
		Code:     input.Code,
		FullName: input.FullName,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCodeList handles the project_code_list tool call.
func (h *Handlers) HandleCodeList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListCodes(h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCodeDelete handles the project_code_delete tool call.
func (h *Handlers) HandleCodeDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteCode(h.db, ops.DeleteCodeInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRuleStore handles the diff_rule_store tool call.
func (h *Handlers) HandleRuleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RuleStoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.StoreRule(h.db, ops.StoreRuleInput{
		DiffNum:  input.DiffNum,
		FullName: input.FullName,
		Abbr:     input.Abbr,
		Lang:     input.Lang,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRuleList handles the diff_rule_list tool call.
func (h *Handlers) HandleRuleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListRules(h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRuleDelete handles the diff_rule_delete tool call.
func (h *Handlers) HandleRuleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RuleDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteRule(h.db, ops.DeleteRuleInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRuleSuggest handles the diff_rule_suggest tool call.
func (h *Handlers) HandleRuleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RuleSuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Suggest(h.db, ops.SuggestInput{Field: input.Field})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProfileExport handles the profile_export tool call.
func (h *Handlers) HandleProfileExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProfileExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ExportProfile(h.db, h.cfg, ops.ExportProfileInput{
		Path: input.Path,
		Name: input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProfileImport handles the profile_import tool call.
func (h *Handlers) HandleProfileImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProfileImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ImportProfile(h.db, h.cfg, ops.ImportProfileInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdateCheck handles the update_check tool call.
func (h *Handlers) HandleUpdateCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client := update.NewClient(h.cfg)
	result, err := update.Check(ctx, client, h.version)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if rErr, ok := err.(*errors.RenamerError); ok {
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": rErr.Message,
			"status":  rErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
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
