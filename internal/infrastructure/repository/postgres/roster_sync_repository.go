package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/roster-sync/internal/domain/roster"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	qb "github.com/riskibarqy/roster-sync/internal/platform/querybuilder"
)

type RosterSyncRepository struct {
	db *sqlx.DB
}

func NewRosterSyncRepository(db *sqlx.DB) *RosterSyncRepository {
	return &RosterSyncRepository{db: db}
}

func (r *RosterSyncRepository) Upsert(ctx context.Context, update rostersync.StateUpdate) error {
	return upsertSyncState(ctx, r.db, update)
}

func (r *RosterSyncRepository) Get(ctx context.Context, leagueID string) (rostersync.State, bool, error) {
	query, args, err := qb.Select(rosterSyncStateColumns...).From("roster_sync_states").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return rostersync.State{}, false, fmt.Errorf("build select roster sync state query: %w", err)
	}

	var row rosterSyncStateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rostersync.State{}, false, nil
		}
		return rostersync.State{}, false, fmt.Errorf("select roster sync state: %w", err)
	}

	return rostersync.State{
		LeagueID:       row.LeagueID,
		Status:         rostersync.Status(row.Status),
		LastSyncedAt:   row.LastSyncedAt,
		LastDurationMs: row.LastDurationMs,
		LastHash:       stringFromNull(row.LastHash),
		LastError:      stringFromNull(row.LastError),
		UpdatedAt:      row.UpdatedAt,
	}, true, nil
}

func (r *RosterSyncRepository) RunInLeagueTx(ctx context.Context, leagueID string, fn func(ctx context.Context, tx rostersync.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for roster sync league=%s: %w", leagueID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &rosterSyncTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster sync tx league=%s: %w", leagueID, err)
	}
	return nil
}

func (r *RosterSyncRepository) ListRoster(ctx context.Context, leagueID string) ([]roster.Row, error) {
	return listLeagueRoster(ctx, r.db, leagueID)
}

func (r *RosterSyncRepository) ListEvents(ctx context.Context, leagueID string, limit int) ([]roster.OwnershipEvent, error) {
	query, args, err := qb.Select(ownershipEventColumns...).From("roster_ownership_events").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ownership events query: %w", err)
	}

	var rows []ownershipEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ownership events: %w", err)
	}

	out := make([]roster.OwnershipEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.OwnershipEvent{
			ID:         row.ID,
			LeagueID:   row.LeagueID,
			PlayerKey:  row.PlayerKey,
			FromTeamID: stringFromNull(row.FromTeamID),
			ToTeamID:   stringFromNull(row.ToTeamID),
			EventType:  roster.EventType(row.EventType),
			Week:       row.Week,
			Season:     row.Season,
			Source:     row.Source,
			RosterHash: row.RosterHash,
			DedupeKey:  row.DedupeKey,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}

func (r *RosterSyncRepository) CountRosterKeysWithPrefix(ctx context.Context, leagueID, prefix string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("league_rosters").
		Where(
			qb.Eq("league_id", leagueID),
			qb.HasPrefix("player_key", prefix),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count roster keys query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count roster keys: %w", err)
	}
	return count, nil
}

type rosterSyncTx struct {
	tx *sqlx.Tx
}

func (t *rosterSyncTx) LockState(ctx context.Context, leagueID string) (string, bool, error) {
	query, args, err := qb.Select("last_hash").From("roster_sync_states").
		Where(qb.Eq("league_id", leagueID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build lock roster sync state query: %w", err)
	}

	var row struct {
		LastHash sql.NullString `db:"last_hash"`
	}
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lock roster sync state: %w", err)
	}
	return stringFromNull(row.LastHash), true, nil
}

func (t *rosterSyncTx) ListRoster(ctx context.Context, leagueID string) ([]roster.Row, error) {
	return listLeagueRoster(ctx, t.tx, leagueID)
}

func (t *rosterSyncTx) InsertEvents(ctx context.Context, events []roster.OwnershipEvent) (int64, error) {
	var inserted int64
	for _, bounds := range chunkBounds(len(events), insertChunkSize) {
		builder := qb.InsertInto("roster_ownership_events").
			Columns(ownershipEventInsert...).
			Suffix("ON CONFLICT (dedupe_key) DO NOTHING")
		for _, event := range events[bounds[0]:bounds[1]] {
			builder.Values(
				event.LeagueID,
				event.PlayerKey,
				nullableString(event.FromTeamID),
				nullableString(event.ToTeamID),
				string(event.EventType),
				event.Week,
				event.Season,
				event.Source,
				event.RosterHash,
				event.DedupeKey,
			)
		}

		query, args, err := builder.ToSQL()
		if err != nil {
			return inserted, fmt.Errorf("build insert ownership events query: %w", err)
		}
		res, err := t.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert ownership events: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("read inserted ownership events: %w", err)
		}
		inserted += affected
	}
	return inserted, nil
}

func (t *rosterSyncTx) ReplaceRoster(ctx context.Context, leagueID string, rows []roster.Row) error {
	query, args, err := qb.DeleteFrom("league_rosters").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete league roster query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete league roster: %w", err)
	}

	for _, bounds := range chunkBounds(len(rows), insertChunkSize) {
		builder := qb.InsertInto("league_rosters").Columns(leagueRosterColumns...)
		for _, row := range rows[bounds[0]:bounds[1]] {
			builder.Values(leagueID, row.TeamID, row.PlayerKey)
		}

		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert league roster query: %w", err)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert league roster: player owned by multiple teams: %w", err)
			}
			return fmt.Errorf("insert league roster: %w", err)
		}
	}
	return nil
}

func (t *rosterSyncTx) UpsertState(ctx context.Context, update rostersync.StateUpdate) error {
	return upsertSyncState(ctx, t.tx, update)
}

func listLeagueRoster(ctx context.Context, q sqlx.QueryerContext, leagueID string) ([]roster.Row, error) {
	query, args, err := qb.Select(leagueRosterColumns...).From("league_rosters").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("team_id", "player_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select league roster query: %w", err)
	}

	var rows []leagueRosterTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select league roster: %w", err)
	}

	out := make([]roster.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Row{
			LeagueID:  row.LeagueID,
			TeamID:    row.TeamID,
			PlayerKey: row.PlayerKey,
		})
	}
	return out, nil
}

// upsertSyncState writes status plus only the supplied fields in one
// INSERT ... ON CONFLICT statement.
func upsertSyncState(ctx context.Context, exec sqlx.ExecerContext, update rostersync.StateUpdate) error {
	columns := []string{"league_id", "status"}
	values := []any{update.LeagueID, string(update.Status)}
	sets := []string{"status = EXCLUDED.status"}

	if update.LastSyncedAt != nil {
		columns = append(columns, "last_synced_at")
		values = append(values, *update.LastSyncedAt)
		sets = append(sets, "last_synced_at = EXCLUDED.last_synced_at")
	}
	if update.LastDurationMs != nil {
		columns = append(columns, "last_duration_ms")
		values = append(values, *update.LastDurationMs)
		sets = append(sets, "last_duration_ms = EXCLUDED.last_duration_ms")
	}
	if update.LastHash != nil {
		columns = append(columns, "last_hash")
		values = append(values, nullableString(*update.LastHash))
		sets = append(sets, "last_hash = EXCLUDED.last_hash")
	}
	if update.LastError != nil {
		columns = append(columns, "last_error")
		values = append(values, nullableString(*update.LastError))
		sets = append(sets, "last_error = EXCLUDED.last_error")
	}
	sets = append(sets, "updated_at = NOW()")

	query, args, err := qb.InsertInto("roster_sync_states").
		Columns(columns...).
		Values(values...).
		Suffix("ON CONFLICT (league_id) DO UPDATE SET " + strings.Join(sets, ", ")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert roster sync state query: %w", err)
	}

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert roster sync state league=%s status=%s: %w", update.LeagueID, update.Status, err)
	}
	return nil
}
