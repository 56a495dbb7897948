package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDuelTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_duel_status",
			mcp.WithDescription("Get a player's duel state and pending requests"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
		),
		s.handleGetDuelStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_duels",
			mcp.WithDescription("List duels in countdown or in progress"),
		),
		s.handleListDuels,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_pending_requests",
			mcp.WithDescription("List duel requests a player has sent and received"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
		),
		s.handleListPendingRequests,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_transfer_incidents",
			mcp.WithDescription("List failed stake transfers, newest first"),
			mcp.WithBoolean("critical_only", mcp.Description("Only transfers whose refund also failed")),
		),
		s.handleListTransferIncidents,
	)
}

func (s *Server) handleGetDuelStatus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	playerID := strings.TrimSpace(request.GetString("player_id", ""))
	if playerID == "" {
		return toolError("invalid_request", "player_id is required"), nil
	}
	status, err := s.svc.Status(playerID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(status), nil
}

func (s *Server) handleListDuels(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.svc.Duels()), nil
}

func (s *Server) handleListPendingRequests(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	playerID := strings.TrimSpace(request.GetString("player_id", ""))
	if playerID == "" {
		return toolError("invalid_request", "player_id is required"), nil
	}
	status, err := s.svc.Status(playerID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"player_id": playerID,
		"received":  status.PendingReceived,
		"sent":      status.PendingSent,
	}), nil
}

func (s *Server) handleListTransferIncidents(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criticalOnly := request.GetBool("critical_only", false)
	return toolResult(map[string]any{"items": s.svc.Incidents(criticalOnly)}), nil
}
