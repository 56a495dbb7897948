package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"duel-arena/internal/app/arena"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes read-only duel state to operators over MCP.
type Server struct {
	svc *arena.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc *arena.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"duel-arena",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		svc:        svc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerDuelTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"duel://{player_id}/status",
			"player_duel_status",
			mcp.WithTemplateDescription("Duel status and pending requests for one player"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := string(request.Params.URI)
			if !strings.HasPrefix(raw, "duel://") || !strings.HasSuffix(raw, "/status") {
				return nil, nil
			}
			playerID := strings.TrimSuffix(strings.TrimPrefix(raw, "duel://"), "/status")
			if playerID == "" {
				return nil, nil
			}
			status, err := s.svc.Status(playerID)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(status)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
