package mcpserver

import (
	"errors"
	"fmt"

	"duel-arena/internal/app/arena"
	"duel-arena/internal/duel"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, arena.ErrInvalidRequest):
		return toolError("invalid_request", err.Error())
	case arena.IsNotFound(err):
		return toolError("not_found", err.Error())
	}
	switch duel.KindOf(err) {
	case duel.KindValidation:
		return toolError("invalid_request", err.Error())
	case duel.KindPrecondition:
		return toolError("precondition_failed", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
