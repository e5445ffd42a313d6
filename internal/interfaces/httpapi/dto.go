package httpapi

import (
	"time"

	"github.com/riskibarqy/roster-sync/internal/domain/roster"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
)

type listDTO[T any] struct {
	Items []T `json:"items"`
}

type syncStateDTO struct {
	LeagueID       string     `json:"league_id"`
	Status         string     `json:"status"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
	LastDurationMs *int64     `json:"last_duration_ms"`
	LastHash       *string    `json:"last_hash"`
	LastError      *string    `json:"last_error"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type unresolvedCountDTO struct {
	LeagueID string `json:"league_id"`
	Count    int    `json:"count"`
}

type rosterTeamDTO struct {
	TeamID     string   `json:"team_id"`
	PlayerKeys []string `json:"player_keys"`
}

type rosterDTO struct {
	LeagueID    string          `json:"league_id"`
	PlayerCount int             `json:"player_count"`
	Hash        string          `json:"hash"`
	Teams       []rosterTeamDTO `json:"teams"`
}

type ownershipEventDTO struct {
	ID         int64     `json:"id"`
	LeagueID   string    `json:"league_id"`
	PlayerKey  string    `json:"player_key"`
	FromTeamID *string   `json:"from_team_id"`
	ToTeamID   *string   `json:"to_team_id"`
	EventType  string    `json:"event_type"`
	Week       int       `json:"week"`
	Season     int       `json:"season"`
	Source     string    `json:"source"`
	RosterHash string    `json:"roster_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

type driftDTO struct {
	PlayerKey      string  `json:"player_key"`
	ReplayedTeamID *string `json:"replayed_team_id"`
	CurrentTeamID  *string `json:"current_team_id"`
}

type verificationDTO struct {
	LeagueID     string     `json:"league_id"`
	EventCount   int        `json:"event_count"`
	ReplayedHash string     `json:"replayed_hash"`
	CurrentHash  string     `json:"current_hash"`
	Consistent   bool       `json:"consistent"`
	Drift        []driftDTO `json:"drift"`
}

type syncResultDTO struct {
	LeagueID       string                   `json:"league_id"`
	RunID          string                   `json:"run_id"`
	Success        bool                     `json:"success"`
	EventsInserted int64                    `json:"events_inserted"`
	ShortCircuited bool                     `json:"short_circuited"`
	DurationMs     int64                    `json:"duration_ms"`
	Hash           string                   `json:"hash,omitempty"`
	Error          string                   `json:"error,omitempty"`
	Conflicts      int                      `json:"conflicts"`
	Resolver       rostersync.ResolverStats `json:"resolver"`
}

type syncJobDTO struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []syncResultDTO `json:"results"`
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func syncStateToDTO(state rostersync.State) syncStateDTO {
	return syncStateDTO{
		LeagueID:       state.LeagueID,
		Status:         string(state.Status),
		LastSyncedAt:   state.LastSyncedAt,
		LastDurationMs: state.LastDurationMs,
		LastHash:       optionalString(state.LastHash),
		LastError:      optionalString(state.LastError),
		UpdatedAt:      state.UpdatedAt,
	}
}

func snapshotToDTO(leagueID string, snapshot roster.Snapshot) rosterDTO {
	out := rosterDTO{
		LeagueID:    leagueID,
		PlayerCount: snapshot.PlayerCount(),
		Hash:        roster.Hash(snapshot),
		Teams:       make([]rosterTeamDTO, 0, len(snapshot)),
	}
	for _, teamID := range snapshot.TeamIDs() {
		out.Teams = append(out.Teams, rosterTeamDTO{
			TeamID:     teamID,
			PlayerKeys: snapshot.PlayerKeys(teamID),
		})
	}
	return out
}

func ownershipEventToDTO(event roster.OwnershipEvent) ownershipEventDTO {
	return ownershipEventDTO{
		ID:         event.ID,
		LeagueID:   event.LeagueID,
		PlayerKey:  event.PlayerKey,
		FromTeamID: optionalString(event.FromTeamID),
		ToTeamID:   optionalString(event.ToTeamID),
		EventType:  string(event.EventType),
		Week:       event.Week,
		Season:     event.Season,
		Source:     event.Source,
		RosterHash: event.RosterHash,
		CreatedAt:  event.CreatedAt,
	}
}

func verificationToDTO(v rostersync.Verification) verificationDTO {
	out := verificationDTO{
		LeagueID:     v.LeagueID,
		EventCount:   v.EventCount,
		ReplayedHash: v.ReplayedHash,
		CurrentHash:  v.CurrentHash,
		Consistent:   v.Consistent,
		Drift:        make([]driftDTO, 0, len(v.Drift)),
	}
	for _, d := range v.Drift {
		out.Drift = append(out.Drift, driftDTO{
			PlayerKey:      d.PlayerKey,
			ReplayedTeamID: optionalString(d.ReplayedTeamID),
			CurrentTeamID:  optionalString(d.CurrentTeamID),
		})
	}
	return out
}

func syncResultToDTO(result rostersync.Result) syncResultDTO {
	return syncResultDTO{
		LeagueID:       result.LeagueID,
		RunID:          result.RunID,
		Success:        result.Success,
		EventsInserted: result.EventsInserted,
		ShortCircuited: result.ShortCircuited,
		DurationMs:     result.DurationMs(),
		Hash:           result.Hash,
		Error:          result.Error,
		Conflicts:      result.Conflicts,
		Resolver:       result.ResolverStats,
	}
}
