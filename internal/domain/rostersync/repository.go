package rostersync

import (
	"context"

	"github.com/riskibarqy/roster-sync/internal/domain/roster"
)

// RosterFetcher lists a league's current rosters from the external platform.
type RosterFetcher interface {
	FetchRosters(ctx context.Context, leagueID string) ([]ExternalRoster, error)
}

// StateRepository persists per-league sync state.
type StateRepository interface {
	// Upsert inserts the row when absent, otherwise updates status and every
	// non-nil field in one statement.
	Upsert(ctx context.Context, update StateUpdate) error
	Get(ctx context.Context, leagueID string) (State, bool, error)
}

// Tx is the unit of work for the critical section of a pass. All calls share
// one database transaction holding the league's sync-state row lock.
type Tx interface {
	// LockState reads lastHash with a row lock held until the tx ends.
	LockState(ctx context.Context, leagueID string) (lastHash string, found bool, err error)
	ListRoster(ctx context.Context, leagueID string) ([]roster.Row, error)
	// InsertEvents ignores rows whose dedupe key already exists and returns
	// how many were written.
	InsertEvents(ctx context.Context, events []roster.OwnershipEvent) (int64, error)
	ReplaceRoster(ctx context.Context, leagueID string, rows []roster.Row) error
	UpsertState(ctx context.Context, update StateUpdate) error
}

// Repository is the storage port of the sync orchestrator.
type Repository interface {
	StateRepository

	// RunInLeagueTx runs fn inside one transaction. fn returning an error
	// rolls back every write.
	RunInLeagueTx(ctx context.Context, leagueID string, fn func(ctx context.Context, tx Tx) error) error
	ListRoster(ctx context.Context, leagueID string) ([]roster.Row, error)
	// ListEvents returns events in insertion order; limit <= 0 means all.
	ListEvents(ctx context.Context, leagueID string, limit int) ([]roster.OwnershipEvent, error)
	CountRosterKeysWithPrefix(ctx context.Context, leagueID, prefix string) (int, error)
}
