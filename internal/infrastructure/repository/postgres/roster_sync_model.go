package postgres

import (
	"database/sql"
	"time"
)

type rosterSyncStateTableModel struct {
	LeagueID       string         `db:"league_id"`
	Status         string         `db:"status"`
	LastSyncedAt   *time.Time     `db:"last_synced_at"`
	LastDurationMs *int64         `db:"last_duration_ms"`
	LastHash       sql.NullString `db:"last_hash"`
	LastError      sql.NullString `db:"last_error"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type ownershipEventTableModel struct {
	ID         int64          `db:"id"`
	LeagueID   string         `db:"league_id"`
	PlayerKey  string         `db:"player_key"`
	FromTeamID sql.NullString `db:"from_team_id"`
	ToTeamID   sql.NullString `db:"to_team_id"`
	EventType  string         `db:"event_type"`
	Week       int            `db:"week"`
	Season     int            `db:"season"`
	Source     string         `db:"source"`
	RosterHash string         `db:"roster_hash"`
	DedupeKey  string         `db:"dedupe_key"`
	CreatedAt  time.Time      `db:"created_at"`
}

type leagueRosterTableModel struct {
	LeagueID  string `db:"league_id"`
	TeamID    string `db:"team_id"`
	PlayerKey string `db:"player_key"`
}

type identityMappingTableModel struct {
	Platform           string         `db:"platform"`
	ExternalID         string         `db:"external_id"`
	CanonicalPlayerID  sql.NullString `db:"canonical_player_id"`
	SecondaryPlayerKey sql.NullString `db:"secondary_player_key"`
}

var (
	rosterSyncStateColumns = []string{"league_id", "status", "last_synced_at", "last_duration_ms", "last_hash", "last_error", "updated_at"}
	ownershipEventColumns  = []string{"id", "league_id", "player_key", "from_team_id", "to_team_id", "event_type", "week", "season", "source", "roster_hash", "dedupe_key", "created_at"}
	ownershipEventInsert   = []string{"league_id", "player_key", "from_team_id", "to_team_id", "event_type", "week", "season", "source", "roster_hash", "dedupe_key"}
	leagueRosterColumns    = []string{"league_id", "team_id", "player_key"}
)
