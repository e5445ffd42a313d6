package roster

import "sort"

// Diff computes the minimal set of ownership events turning prev into next.
// Week, season, source, league and dedupe fields are left for the caller.
// Events are ordered by player key so the output is deterministic.
func Diff(prev, next Snapshot) []OwnershipEvent {
	prevOwners := ownerIndex(prev)
	nextOwners := ownerIndex(next)

	keys := make([]string, 0, len(prevOwners)+len(nextOwners))
	for key := range prevOwners {
		keys = append(keys, key)
	}
	for key := range nextOwners {
		if _, seen := prevOwners[key]; !seen {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]OwnershipEvent, 0)
	for _, key := range keys {
		from, wasOwned := prevOwners[key]
		to, isOwned := nextOwners[key]

		switch {
		case !wasOwned && isOwned:
			out = append(out, OwnershipEvent{PlayerKey: key, ToTeamID: to, EventType: EventAdd})
		case wasOwned && !isOwned:
			out = append(out, OwnershipEvent{PlayerKey: key, FromTeamID: from, EventType: EventDrop})
		case wasOwned && isOwned && from != to:
			out = append(out, OwnershipEvent{PlayerKey: key, FromTeamID: from, ToTeamID: to, EventType: EventMove})
		}
	}

	return out
}

// ownerIndex inverts a snapshot to player key -> team id. When a key appears
// on several teams the lexicographically smallest team id wins.
func ownerIndex(s Snapshot) map[string]string {
	out := make(map[string]string, s.PlayerCount())
	for _, teamID := range s.TeamIDs() {
		for key := range s[teamID] {
			if _, exists := out[key]; exists {
				continue
			}
			out[key] = teamID
		}
	}
	return out
}
