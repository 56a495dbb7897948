package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"duel-arena/internal/app/arena"
	"duel-arena/internal/config"
	"duel-arena/internal/duel"
	"duel-arena/internal/ledger"
	"duel-arena/internal/logging"
	"duel-arena/internal/mcpserver"
	"duel-arena/internal/notify"
	"duel-arena/internal/scheduler"
	"duel-arena/internal/store"
	httptransport "duel-arena/internal/transport/http"
	"duel-arena/internal/world"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type server struct {
	router chi.Router
	loop   *scheduler.Loop
	coord  *duel.Coordinator
	hub    *notify.Hub
	store  *store.Store
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	baseLevel := zerolog.GlobalLevel()

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	logging.SetDebug(cfg.Duel.Debug, baseLevel)

	srv, err := newServer(cfg, func() (config.DuelConfig, error) {
		dc, err := config.LoadDuel()
		if err == nil {
			logging.SetDebug(dc.Debug, baseLevel)
		}
		return dc, err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}
	httptransport.LogRoutes(srv.router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
	srv.close(shutdownCtx)
}

// newServer wires the duel stack. Without POSTGRES_DSN balances live in
// process memory and ledger history is unavailable.
func newServer(cfg config.AppConfig, loadDuel func() (config.DuelConfig, error)) (*server, error) {
	var (
		st       *store.Store
		led      ledger.Ledger
		accounts ledger.Accounts
		ping     func(ctx context.Context) error
		coord    *duel.Coordinator
	)
	// Read live so a config reload takes effect in the ledger too.
	allowOverdraft := func() bool { return coord.Config().AllowNegativeBalance }
	if cfg.Server.PostgresDSN != "" {
		var err error
		st, err = store.New(cfg.Server.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(context.Background()); err != nil {
			st.Close()
			return nil, err
		}
		sl := ledger.NewStoreLedger(st, allowOverdraft)
		led, accounts, ping = sl, sl, st.Ping
	} else {
		mem := ledger.NewMemory()
		mem.AllowOverdraft = allowOverdraft
		led, accounts = mem, mem
		log.Warn().Msg("POSTGRES_DSN not set; using in-memory ledger")
	}

	loop := scheduler.NewLoop(256)
	hub := notify.NewHub(200, nil)
	incidents := ledger.NewIncidentLog(500)

	tracker := world.NewTracker(func() float64 { return coord.Config().ProximityRadius })
	coord = duel.NewCoordinator(cfg.Duel, duel.Deps{
		Ledger:    led,
		Proximity: tracker,
		Presence:  tracker,
		Scheduler: loop,
		Notifier:  hub,
		Incidents: incidents,
	})

	svc := arena.NewService(arena.Deps{
		Coordinator:     coord,
		Tracker:         tracker,
		Hub:             hub,
		Exec:            loop,
		Ledger:          led,
		Accounts:        accounts,
		Incidents:       incidents,
		Store:           st,
		StartingBalance: cfg.Server.StartingBalance,
		LoadDuelConfig:  loadDuel,
	})
	router := httptransport.NewRouter(cfg.Server, httptransport.RouterDeps{
		Service: svc,
		Hub:     hub,
		MCP:     mcpserver.New(svc).Handler(),
		Ping:    ping,
	})
	return &server{router: router, loop: loop, coord: coord, hub: hub, store: st}, nil
}

// close ends every duel on the loop, then stops the loop and the store.
func (s *server) close(ctx context.Context) {
	if err := s.loop.Do(ctx, func() { s.coord.Shutdown(ctx) }); err != nil {
		log.Warn().Err(err).Msg("coordinator shutdown did not complete")
	}
	s.loop.Close()
	s.hub.Close()
	if s.store != nil {
		s.store.Close()
	}
	log.Info().Msg("server stopped")
}
