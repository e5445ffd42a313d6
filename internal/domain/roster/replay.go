package roster

// Replay folds an ordered event log into the ownership state it implies.
// Events are applied as transitions: ADD and MOVE place the player on
// ToTeamID, DROP removes the player wherever it is held.
func Replay(events []OwnershipEvent) Snapshot {
	owners := make(map[string]string)
	for _, event := range events {
		switch event.EventType {
		case EventAdd, EventMove:
			if event.ToTeamID == "" {
				continue
			}
			owners[event.PlayerKey] = event.ToTeamID
		case EventDrop:
			delete(owners, event.PlayerKey)
		}
	}

	out := NewSnapshot()
	for key, teamID := range owners {
		out.Add(teamID, key)
	}
	return out
}

// Drift is a player whose replayed owner differs from the materialized view.
type Drift struct {
	PlayerKey      string
	ReplayedTeamID string
	CurrentTeamID  string
}

// Compare reports per-player disagreements between a replayed snapshot and
// the current one, ordered by player key.
func Compare(replayed, current Snapshot) []Drift {
	events := Diff(replayed, current)
	out := make([]Drift, 0, len(events))
	for _, event := range events {
		out = append(out, Drift{
			PlayerKey:      event.PlayerKey,
			ReplayedTeamID: event.FromTeamID,
			CurrentTeamID:  event.ToTeamID,
		})
	}
	return out
}
