package roster

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// EventType classifies a single player-ownership change inside a league.
type EventType string

const (
	EventAdd  EventType = "ADD"
	EventDrop EventType = "DROP"
	EventMove EventType = "MOVE"
)

func (t EventType) Valid() bool {
	switch t {
	case EventAdd, EventDrop, EventMove:
		return true
	default:
		return false
	}
}

// Snapshot is the team -> player-key set ownership state of one league at one instant.
type Snapshot map[string]map[string]struct{}

// Row is one (team, player) pair of the current-roster materialized view.
type Row struct {
	LeagueID  string
	TeamID    string
	PlayerKey string
}

// OwnershipEvent is an immutable fact in the append-only ownership log.
// An empty FromTeamID means the player had no owner; an empty ToTeamID means
// the player left every team.
type OwnershipEvent struct {
	ID         int64
	LeagueID   string
	PlayerKey  string
	FromTeamID string
	ToTeamID   string
	EventType  EventType
	Week       int
	Season     int
	Source     string
	RosterHash string
	DedupeKey  string
	CreatedAt  time.Time
}

func NewSnapshot() Snapshot {
	return make(Snapshot)
}

// Add records playerKey under teamID. It does not check cross-team ownership;
// use Owner or Validate for that.
func (s Snapshot) Add(teamID, playerKey string) {
	players, ok := s[teamID]
	if !ok {
		players = make(map[string]struct{})
		s[teamID] = players
	}
	players[playerKey] = struct{}{}
}

func (s Snapshot) Remove(teamID, playerKey string) {
	players, ok := s[teamID]
	if !ok {
		return
	}
	delete(players, playerKey)
	if len(players) == 0 {
		delete(s, teamID)
	}
}

// Owner returns the team currently holding playerKey.
func (s Snapshot) Owner(playerKey string) (string, bool) {
	for teamID, players := range s {
		if _, ok := players[playerKey]; ok {
			return teamID, true
		}
	}
	return "", false
}

func (s Snapshot) PlayerCount() int {
	total := 0
	for _, players := range s {
		total += len(players)
	}
	return total
}

// TeamIDs returns team ids in lexicographic order.
func (s Snapshot) TeamIDs() []string {
	out := make([]string, 0, len(s))
	for teamID := range s {
		out = append(out, teamID)
	}
	sort.Strings(out)
	return out
}

// PlayerKeys returns the team's player keys in lexicographic order.
func (s Snapshot) PlayerKeys(teamID string) []string {
	players := s[teamID]
	out := make([]string, 0, len(players))
	for key := range players {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Rows flattens the snapshot into current-roster rows ordered by team then player.
func (s Snapshot) Rows(leagueID string) []Row {
	out := make([]Row, 0, s.PlayerCount())
	for _, teamID := range s.TeamIDs() {
		for _, key := range s.PlayerKeys(teamID) {
			out = append(out, Row{LeagueID: leagueID, TeamID: teamID, PlayerKey: key})
		}
	}
	return out
}

func FromRows(rows []Row) Snapshot {
	out := NewSnapshot()
	for _, row := range rows {
		out.Add(row.TeamID, row.PlayerKey)
	}
	return out
}

// Equal reports logical equality; teams with no players are ignored.
func (s Snapshot) Equal(other Snapshot) bool {
	return CanonicalString(s) == CanonicalString(other)
}

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for teamID, players := range s {
		cloned := make(map[string]struct{}, len(players))
		for key := range players {
			cloned[key] = struct{}{}
		}
		out[teamID] = cloned
	}
	return out
}

// OwnershipConflict describes a player found on more than one team.
type OwnershipConflict struct {
	PlayerKey string
	TeamIDs   []string
}

// Conflicts lists players owned by more than one team, ordered by player key.
func (s Snapshot) Conflicts() []OwnershipConflict {
	owners := make(map[string][]string)
	for _, teamID := range s.TeamIDs() {
		for key := range s[teamID] {
			owners[key] = append(owners[key], teamID)
		}
	}

	out := make([]OwnershipConflict, 0)
	for key, teams := range owners {
		if len(teams) < 2 {
			continue
		}
		out = append(out, OwnershipConflict{PlayerKey: key, TeamIDs: teams})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerKey < out[j].PlayerKey })
	return out
}

func (s Snapshot) Validate() error {
	conflicts := s.Conflicts()
	if len(conflicts) == 0 {
		return nil
	}

	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts = append(parts, fmt.Sprintf("%s owned by %s", c.PlayerKey, strings.Join(c.TeamIDs, ",")))
	}
	return fmt.Errorf("player owned by multiple teams: %s", strings.Join(parts, "; "))
}
