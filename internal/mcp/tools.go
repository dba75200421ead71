package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stackdiff/internal/budget"
	"github.com/rpggio/stackdiff/internal/diff"
	"github.com/rpggio/stackdiff/internal/domain/changes"
)

type toolHandlers struct {
	services Services
	logger   *slog.Logger
}

func registerTools(server *sdkmcp.Server, services Services, logger *slog.Logger) {
	h := &toolHandlers{services: services, logger: logger}

	if services.Changes != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name: "get_activity_diffs",
			Description: "Summarize recent page activity in a drive as stacked diffs. Autosaves in one editing " +
				"session are collapsed into a single diff, the most significant changes come first, and the " +
				"output never exceeds the derived or explicit budget.",
		}, h.getActivityDiffs)
	}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "diff_content",
		Description: "Compare two contents and return change stats, a summary and a unified patch that apply_patch can replay",
	}, h.diffContent)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_patch",
		Description: "Apply a patch produced by diff_content to base content. success is false if any hunk failed",
	}, h.applyPatch)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "structural_diff",
		Description: "Compare the top-level nodes of two structured documents by position",
	}, h.structuralDiff)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "extract_sections",
		Description: "Split content into addressable sections (document nodes or paragraphs)",
	}, h.extractSections)
}

func (h *toolHandlers) getActivityDiffs(ctx context.Context, _ *sdkmcp.CallToolRequest, params GetActivityDiffsParams) (*sdkmcp.CallToolResult, any, error) {
	req := changes.SummaryRequest{
		DriveID:       params.DriveID,
		Limit:         params.Limit,
		OutputCeiling: params.OutputCeiling,
	}
	if params.PageID != "" {
		pageID := params.PageID
		req.PageID = &pageID
	}
	if params.Since != "" {
		since, err := time.Parse(time.RFC3339, params.Since)
		if err != nil {
			return toolError(&APIError{
				Code:         "INVALID_INPUT",
				Message:      fmt.Sprintf("invalid since: %v", err),
				RecoveryHint: "Use an RFC 3339 timestamp such as 2026-01-02T15:04:05Z",
			})
		}
		req.Since = since
	}
	if params.Total > 0 || params.PerItem > 0 || params.MinUseful > 0 {
		req.Budget = &budget.DiffBudget{Total: params.Total, PerItem: params.PerItem, MinUseful: params.MinUseful}
	}

	h.logger.Debug("get_activity_diffs", "tenant_id", getTenantID(ctx), "session_id", getSessionID(ctx), "drive_id", req.DriveID)
	summary, err := h.services.Changes.Summarize(ctx, getTenantID(ctx), req)
	if err != nil {
		h.logger.Warn("get_activity_diffs failed", "tenant_id", getTenantID(ctx), "error", err)
		return toolError(MapError(err))
	}
	return jsonResult(summary)
}

func (h *toolHandlers) diffContent(_ context.Context, _ *sdkmcp.CallToolRequest, params DiffContentParams) (*sdkmcp.CallToolResult, any, error) {
	oldLabel, newLabel := params.OldLabel, params.NewLabel
	if oldLabel == "" {
		oldLabel = "before"
	}
	if newLabel == "" {
		newLabel = "after"
	}

	result, patch := h.services.Differ.Compare(params.Old, params.New, oldLabel, newLabel)
	return jsonResult(DiffContentResult{
		Format:      result.Format,
		IsIdentical: result.IsIdentical,
		Stats:       result.Stats,
		Summary:     result.Summary(),
		Spans:       result.Spans,
		UnifiedDiff: patch,
	})
}

func (h *toolHandlers) applyPatch(_ context.Context, _ *sdkmcp.CallToolRequest, params ApplyPatchParams) (*sdkmcp.CallToolResult, any, error) {
	return jsonResult(h.services.Differ.ApplyPatch(params.Base, params.Patch))
}

func (h *toolHandlers) structuralDiff(_ context.Context, _ *sdkmcp.CallToolRequest, params StructuralDiffParams) (*sdkmcp.CallToolResult, any, error) {
	return jsonResult(StructuralDiffResult{Changes: diff.StructuralDiff(params.Old, params.New)})
}

func (h *toolHandlers) extractSections(_ context.Context, _ *sdkmcp.CallToolRequest, params ExtractSectionsParams) (*sdkmcp.CallToolResult, any, error) {
	return jsonResult(ExtractSectionsResult{Sections: diff.ExtractSections(params.Content)})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func toolError(apiErr *APIError) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(apiErr)
	if err != nil {
		return nil, nil, apiErr
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
