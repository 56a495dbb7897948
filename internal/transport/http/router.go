package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"duel-arena/internal/app/arena"
	"duel-arena/internal/config"
	"duel-arena/internal/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type RouterDeps struct {
	Service *arena.Service
	Hub     *notify.Hub
	// MCP is mounted at /mcp when set.
	MCP  http.Handler
	Ping func(ctx context.Context) error
}

func NewRouter(cfg config.ServerConfig, d RouterDeps) *chi.Mux {
	players := NewPlayerHandlers(d.Service, d.Hub)
	duels := NewDuelHandlers(d.Service)
	admin := NewAdminHandlers(d.Service, d.Ping)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", admin.Health())
	if d.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", d.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", d.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Post("/players", players.Join())
		r.Put("/players/{player_id}/position", players.Move())
		r.Delete("/players/{player_id}", players.Leave())
		r.Get("/players/{player_id}/duel", players.Duel())
		r.Get("/players/{player_id}/same-session/{other_id}", players.SameSession())
		r.Get("/players/{player_id}/events", players.Events())

		r.Post("/duels/challenge", duels.Challenge())
		r.Post("/duels/accept", duels.Accept())
		r.Post("/events/damage", duels.Damage())
		r.Post("/events/death", duels.Death())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/admin/duels", admin.Duels())
			r.Get("/admin/transfer-incidents", admin.TransferIncidents())
			r.Get("/admin/ledger", admin.Ledger())
			r.Post("/admin/reload", admin.Reload())
			r.Post("/admin/topup", admin.Topup())

			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
