package sleeper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/roster-sync/internal/platform/logging"
	"github.com/riskibarqy/roster-sync/internal/platform/resilience"
	"github.com/riskibarqy/roster-sync/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg ClientConfig) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.HTTPClient = server.Client()
	cfg.BaseURL = server.URL + "/"
	cfg.RetryBackoff = time.Millisecond
	cfg.Logger = logging.NewNop()
	return NewClient(cfg)
}

func TestFetchRosters_MapsRosterIDToTeam(t *testing.T) {
	t.Parallel()

	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"roster_id": 2, "owner_id": "u2", "league_id": "L1", "players": ["p3", " p4 ", "p3", ""]},
			{"roster_id": 1, "owner_id": null, "league_id": "L1", "players": null}
		]`))
	}, ClientConfig{})

	rosters, err := client.FetchRosters(context.Background(), "L1")
	if err != nil {
		t.Fatalf("fetch rosters: %v", err)
	}
	if gotPath != "/league/L1/rosters" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(rosters) != 2 {
		t.Fatalf("expected 2 rosters, got=%d", len(rosters))
	}
	if rosters[0].TeamID != "1" || len(rosters[0].ExternalPlayerIDs) != 0 {
		t.Fatalf("unexpected first roster: %+v", rosters[0])
	}
	if rosters[1].TeamID != "2" {
		t.Fatalf("unexpected second roster team: %s", rosters[1].TeamID)
	}
	players := rosters[1].ExternalPlayerIDs
	if len(players) != 2 || players[0] != "p3" || players[1] != "p4" {
		t.Fatalf("unexpected players: %v", players)
	}
}

func TestFetchRosters_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("try later"))
			return
		}
		_, _ = w.Write([]byte(`[{"roster_id": 7, "players": ["a"]}]`))
	}, ClientConfig{MaxRetries: 2})

	rosters, err := client.FetchRosters(context.Background(), "L1")
	if err != nil {
		t.Fatalf("fetch rosters: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got=%d", calls.Load())
	}
	if len(rosters) != 1 || rosters[0].TeamID != "7" {
		t.Fatalf("unexpected rosters: %+v", rosters)
	}
}

func TestFetchRosters_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, ClientConfig{MaxRetries: 3})

	_, err := client.FetchRosters(context.Background(), "missing")
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected not found error, got=%v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got=%d", calls.Load())
	}
}

func TestFetchRosters_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad league"))
	}, ClientConfig{MaxRetries: 3})

	_, err := client.FetchRosters(context.Background(), "L1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, errSleeperTransient) {
		t.Fatalf("400 must not be transient: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got=%d", calls.Load())
	}
}

func TestFetchRosters_BreakerOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, ClientConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchRosters(context.Background(), "L1"); !errors.Is(err, errSleeperTransient) {
			t.Fatalf("attempt %d: expected transient error, got=%v", i, err)
		}
	}
	if client.Breaker().State() != resilience.CircuitStateOpen {
		t.Fatalf("expected open breaker, got=%s", client.Breaker().State())
	}

	_, err := client.FetchRosters(context.Background(), "L1")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got=%v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected breaker to short-circuit the third call, got calls=%d", calls.Load())
	}
}

func TestFetchRosters_RequiresLeagueID(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchRosters(context.Background(), "  "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got=%v", err)
	}
	if client.Breaker() != nil {
		t.Fatalf("breaker should be nil when disabled")
	}
}
