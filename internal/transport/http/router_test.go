package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"duel-arena/internal/app/arena"
	"duel-arena/internal/config"
	"duel-arena/internal/duel"
	"duel-arena/internal/ledger"
	"duel-arena/internal/notify"
	"duel-arena/internal/scheduler"
	"duel-arena/internal/world"
)

type inline struct{}

func (inline) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

type testEnv struct {
	srv   *httptest.Server
	clock *scheduler.Manual
	mem   *ledger.Memory
}

func newTestEnv(t *testing.T, adminKey string) *testEnv {
	t.Helper()
	clock := scheduler.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	duelCfg := config.DefaultDuel()
	tracker := world.NewTracker(func() float64 { return duelCfg.ProximityRadius })
	hub := notify.NewHub(50, clock.Now)
	mem := ledger.NewMemory()
	incidents := ledger.NewIncidentLog(10)
	coord := duel.NewCoordinator(duelCfg, duel.Deps{
		Ledger: mem, Proximity: tracker, Presence: tracker,
		Scheduler: clock, Notifier: hub, Incidents: incidents,
	})
	svc := arena.NewService(arena.Deps{
		Coordinator: coord, Tracker: tracker, Hub: hub, Exec: inline{},
		Ledger: mem, Accounts: mem, Incidents: incidents, StartingBalance: 100,
	})
	r := NewRouter(config.ServerConfig{AdminAPIKey: adminKey}, RouterDeps{Service: svc, Hub: hub})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, clock: clock, mem: mem}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (e *testEnv) join(t *testing.T, id, name string, x float64) {
	t.Helper()
	code, body := e.do(t, http.MethodPost, "/api/players", map[string]any{
		"player_id": id, "name": name, "position": map[string]any{"world": "overworld", "x": x},
	})
	if code != http.StatusOK {
		t.Fatalf("join %s: %d %v", id, code, body)
	}
}

func TestDuelFlowOverHTTP(t *testing.T) {
	e := newTestEnv(t, "")
	e.join(t, "p1", "Alice", 0)
	e.join(t, "p2", "Bob", 2)

	code, body := e.do(t, http.MethodPost, "/api/duels/challenge", map[string]any{"sender_id": "p1", "target": "Bob", "bet": "50"})
	if code != http.StatusCreated || body["target_id"] != "p2" {
		t.Fatalf("challenge: %d %v", code, body)
	}
	code, body = e.do(t, http.MethodPost, "/api/duels/challenge", map[string]any{"sender_id": "p1", "target": "Bob", "bet": "50"})
	if code != http.StatusConflict || body["error"] != "request_already_pending" {
		t.Fatalf("duplicate challenge: %d %v", code, body)
	}
	code, body = e.do(t, http.MethodPost, "/api/duels/accept", map[string]any{"target_id": "p2", "sender": "Alice"})
	if code != http.StatusOK || body["state"] != "countdown" {
		t.Fatalf("accept: %d %v", code, body)
	}
	code, body = e.do(t, http.MethodPost, "/api/events/damage", map[string]any{"attacker_id": "p1", "defender_id": "p2"})
	if code != http.StatusOK || body["decision"] != "deny" {
		t.Fatalf("damage during countdown: %d %v", code, body)
	}
	e.clock.Advance(3 * time.Second)

	code, body = e.do(t, http.MethodGet, "/api/players/p1/duel", nil)
	if code != http.StatusOK || body["active"] != true || body["allow_world_interaction"] != false {
		t.Fatalf("status: %d %v", code, body)
	}
	code, body = e.do(t, http.MethodGet, "/api/players/p1/same-session/p2", nil)
	if body["same_session"] != true {
		t.Fatalf("same session: %d %v", code, body)
	}
	code, body = e.do(t, http.MethodPost, "/api/events/death", map[string]any{"victim_id": "p2", "killer_id": "p1"})
	if code != http.StatusOK || body["keep_inventory"] != true {
		t.Fatalf("death: %d %v", code, body)
	}
	res, _ := body["resolution"].(map[string]any)
	if res["winner_id"] != "p1" || res["settled"] != true {
		t.Fatalf("resolution: %v", res)
	}
	if bal, _ := e.mem.Balance(context.Background(), "p1"); bal != 150 {
		t.Fatalf("winner balance = %d", bal)
	}
}

func TestChallengeErrorsMapToStatus(t *testing.T) {
	e := newTestEnv(t, "")
	e.join(t, "p1", "Alice", 0)
	e.join(t, "p2", "Bob", 500)

	cases := []struct {
		body map[string]any
		code int
		err  string
	}{
		{map[string]any{"sender_id": "p1", "target": "Bob"}, http.StatusConflict, "too_far_away"},
		{map[string]any{"sender_id": "p1", "target": "Nobody"}, http.StatusNotFound, "player_not_found"},
		{map[string]any{"sender_id": "p1", "target": "Bob", "bet": "x"}, http.StatusBadRequest, "invalid_amount"},
		{map[string]any{"sender_id": "p1", "target": "Bob", "bet": "1"}, http.StatusBadRequest, "bet_out_of_range"},
		{map[string]any{"sender_id": "p1"}, http.StatusBadRequest, "invalid_request"},
		{map[string]any{"sender_id": "ghost", "target": "Bob"}, http.StatusNotFound, "player_offline"},
	}
	for _, tc := range cases {
		code, body := e.do(t, http.MethodPost, "/api/duels/challenge", tc.body)
		if code != tc.code || body["error"] != tc.err {
			t.Fatalf("%v: got %d %v, want %d %s", tc.body, code, body, tc.code, tc.err)
		}
	}
}

func TestLeaveForfeitsOverHTTP(t *testing.T) {
	e := newTestEnv(t, "")
	e.join(t, "p1", "Alice", 0)
	e.join(t, "p2", "Bob", 1)
	e.do(t, http.MethodPost, "/api/duels/challenge", map[string]any{"sender_id": "p1", "target": "Bob"})
	e.do(t, http.MethodPost, "/api/duels/accept", map[string]any{"target_id": "p2", "sender": "Alice"})

	code, body := e.do(t, http.MethodDelete, "/api/players/p2", nil)
	forfeit, _ := body["forfeit"].(map[string]any)
	if code != http.StatusOK || forfeit["winner_id"] != "p1" {
		t.Fatalf("leave: %d %v", code, body)
	}
	code, _ = e.do(t, http.MethodPut, "/api/players/p2/position", map[string]any{"world": "overworld"})
	if code != http.StatusNotFound {
		t.Fatalf("move after leave: %d", code)
	}
}

func TestAdminRoutesRequireKey(t *testing.T) {
	e := newTestEnv(t, "secret")
	if code, _ := e.do(t, http.MethodGet, "/api/admin/duels", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	code, body := e.do(t, http.MethodPost, "/api/admin/topup", map[string]any{"player_id": "p7", "amount": 30}, "X-Admin-Key", "secret")
	if code != http.StatusOK || body["balance"] != float64(130) {
		t.Fatalf("topup: %d %v", code, body)
	}
	code, body = e.do(t, http.MethodGet, "/api/admin/transfer-incidents", nil, "Authorization", "Bearer secret")
	if code != http.StatusOK {
		t.Fatalf("incidents: %d %v", code, body)
	}
	if code, _ := e.do(t, http.MethodGet, "/api/admin/ledger", nil, "X-Admin-Key", "secret"); code != http.StatusNotImplemented {
		t.Fatalf("ledger without store: %d", code)
	}
	if code, _ := e.do(t, http.MethodGet, "/healthz", nil); code != http.StatusOK {
		t.Fatalf("healthz: %d", code)
	}
}
