package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
)

type countingBatchSyncer struct {
	mu      sync.Mutex
	calls   int
	leagues [][]string
	ticked  chan struct{}
}

func (s *countingBatchSyncer) SyncLeagues(_ context.Context, leagueIDs []string, _ rostersync.Options) ([]rostersync.Result, error) {
	s.mu.Lock()
	s.calls++
	s.leagues = append(s.leagues, append([]string(nil), leagueIDs...))
	s.mu.Unlock()

	select {
	case s.ticked <- struct{}{}:
	default:
	}

	out := make([]rostersync.Result, 0, len(leagueIDs))
	for _, id := range leagueIDs {
		out = append(out, rostersync.Result{LeagueID: id, Success: true, EventsInserted: 1})
	}
	return out, nil
}

func TestRosterSyncScheduler_TicksImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	syncer := &countingBatchSyncer{ticked: make(chan struct{}, 1)}
	scheduler := NewRosterSyncScheduler(syncer, []string{"L1", " ", "L2", "L1"}, time.Hour, rostersync.Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	select {
	case <-syncer.ticked:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected immediate tick")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop")
	}

	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	if syncer.calls != 1 {
		t.Fatalf("expected one tick within an hour interval, got %d", syncer.calls)
	}
	if got := syncer.leagues[0]; len(got) != 2 || got[0] != "L1" || got[1] != "L2" {
		t.Fatalf("unexpected league list: %v", got)
	}
}

func TestRosterSyncScheduler_RejectsNonPositiveInterval(t *testing.T) {
	t.Parallel()

	scheduler := NewRosterSyncScheduler(&countingBatchSyncer{}, []string{"L1"}, 0, rostersync.Options{}, nil)
	if err := scheduler.Run(context.Background()); err == nil {
		t.Fatalf("expected interval error")
	}
}

func TestRosterSyncScheduler_Tick(t *testing.T) {
	t.Parallel()

	syncer := &countingBatchSyncer{ticked: make(chan struct{}, 1)}
	scheduler := NewRosterSyncScheduler(syncer, []string{"L1", "L2"}, time.Minute, rostersync.Options{}, nil)

	results := scheduler.Tick(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
}
