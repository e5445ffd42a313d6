package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/roster-sync/internal/domain/roster"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
)

// RosterSyncRepository keeps sync state, the event log and current rosters in
// process. A per-league mutex held for the whole transaction stands in for the
// sync-state row lock.
type RosterSyncRepository struct {
	mu          sync.RWMutex
	states      map[string]rostersync.State
	rosters     map[string][]roster.Row
	events      []roster.OwnershipEvent
	dedupe      map[string]struct{}
	nextEventID int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

func NewRosterSyncRepository() *RosterSyncRepository {
	return &RosterSyncRepository{
		states:  make(map[string]rostersync.State),
		rosters: make(map[string][]roster.Row),
		dedupe:  make(map[string]struct{}),
		locks:   make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

func (r *RosterSyncRepository) Upsert(_ context.Context, update rostersync.StateUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.applyStateLocked(update)
	return nil
}

func (r *RosterSyncRepository) Get(_ context.Context, leagueID string) (rostersync.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[leagueID]
	if !ok {
		return rostersync.State{}, false, nil
	}
	return cloneState(state), true, nil
}

func (r *RosterSyncRepository) ListRoster(_ context.Context, leagueID string) ([]roster.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]roster.Row(nil), r.rosters[leagueID]...), nil
}

func (r *RosterSyncRepository) ListEvents(_ context.Context, leagueID string, limit int) ([]roster.OwnershipEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.OwnershipEvent, 0)
	for _, event := range r.events {
		if event.LeagueID != leagueID {
			continue
		}
		out = append(out, event)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *RosterSyncRepository) CountRosterKeysWithPrefix(_ context.Context, leagueID, prefix string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, row := range r.rosters[leagueID] {
		if strings.HasPrefix(row.PlayerKey, prefix) {
			count++
		}
	}
	return count, nil
}

func (r *RosterSyncRepository) RunInLeagueTx(ctx context.Context, leagueID string, fn func(ctx context.Context, tx rostersync.Tx) error) error {
	lock := r.leagueLock(leagueID)
	lock.Lock()
	defer lock.Unlock()

	tx := &rosterSyncTx{repo: r, leagueID: leagueID, staged: make(map[string]struct{})}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, event := range tx.events {
		if _, dup := r.dedupe[event.DedupeKey]; dup {
			continue
		}
		r.nextEventID++
		event.ID = r.nextEventID
		event.CreatedAt = now
		r.events = append(r.events, event)
		r.dedupe[event.DedupeKey] = struct{}{}
	}
	if tx.rosterReplaced {
		r.rosters[leagueID] = tx.rows
	}
	for _, update := range tx.states {
		r.applyStateLocked(update)
	}
	return nil
}

func (r *RosterSyncRepository) leagueLock(leagueID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	lock, ok := r.locks[leagueID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[leagueID] = lock
	}
	return lock
}

func (r *RosterSyncRepository) applyStateLocked(update rostersync.StateUpdate) {
	state, ok := r.states[update.LeagueID]
	if !ok {
		state = rostersync.State{LeagueID: update.LeagueID}
	}

	state.Status = update.Status
	if update.LastSyncedAt != nil {
		syncedAt := *update.LastSyncedAt
		state.LastSyncedAt = &syncedAt
	}
	if update.LastDurationMs != nil {
		duration := *update.LastDurationMs
		state.LastDurationMs = &duration
	}
	if update.LastHash != nil {
		state.LastHash = *update.LastHash
	}
	if update.LastError != nil {
		state.LastError = *update.LastError
	}
	state.UpdatedAt = r.now()
	r.states[update.LeagueID] = state
}

type rosterSyncTx struct {
	repo     *RosterSyncRepository
	leagueID string

	events         []roster.OwnershipEvent
	staged         map[string]struct{}
	rows           []roster.Row
	rosterReplaced bool
	states         []rostersync.StateUpdate
}

func (t *rosterSyncTx) LockState(_ context.Context, leagueID string) (string, bool, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()

	state, ok := t.repo.states[leagueID]
	if !ok {
		return "", false, nil
	}
	return state.LastHash, true, nil
}

func (t *rosterSyncTx) ListRoster(ctx context.Context, leagueID string) ([]roster.Row, error) {
	if t.rosterReplaced && leagueID == t.leagueID {
		return append([]roster.Row(nil), t.rows...), nil
	}
	return t.repo.ListRoster(ctx, leagueID)
}

func (t *rosterSyncTx) InsertEvents(_ context.Context, events []roster.OwnershipEvent) (int64, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()

	var inserted int64
	for _, event := range events {
		if _, dup := t.repo.dedupe[event.DedupeKey]; dup {
			continue
		}
		if _, dup := t.staged[event.DedupeKey]; dup {
			continue
		}
		t.staged[event.DedupeKey] = struct{}{}
		t.events = append(t.events, event)
		inserted++
	}
	return inserted, nil
}

func (t *rosterSyncTx) ReplaceRoster(_ context.Context, leagueID string, rows []roster.Row) error {
	out := make([]roster.Row, 0, len(rows))
	for _, row := range rows {
		row.LeagueID = leagueID
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].PlayerKey < out[j].PlayerKey
	})
	t.rows = out
	t.rosterReplaced = true
	return nil
}

func (t *rosterSyncTx) UpsertState(_ context.Context, update rostersync.StateUpdate) error {
	t.states = append(t.states, update)
	return nil
}

func cloneState(state rostersync.State) rostersync.State {
	out := state
	if state.LastSyncedAt != nil {
		syncedAt := *state.LastSyncedAt
		out.LastSyncedAt = &syncedAt
	}
	if state.LastDurationMs != nil {
		duration := *state.LastDurationMs
		out.LastDurationMs = &duration
	}
	return out
}
