package roster

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/text/unicode/norm"
)

const (
	teamSeparator   = '\x1e'
	fieldSeparator  = '\x1d'
	playerSeparator = '\x1f'
)

// CanonicalString renders a snapshot as a deterministic string: teams sorted
// by id, each team's player keys sorted, ids NFC-normalized. Teams with no
// players are omitted so the output only depends on ownership.
func CanonicalString(s Snapshot) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	first := true
	for _, teamID := range s.TeamIDs() {
		keys := s.PlayerKeys(teamID)
		if len(keys) == 0 {
			continue
		}
		if !first {
			_ = buf.WriteByte(teamSeparator)
		}
		first = false

		_, _ = buf.WriteString(norm.NFC.String(teamID))
		_ = buf.WriteByte(fieldSeparator)
		for i, key := range keys {
			if i > 0 {
				_ = buf.WriteByte(playerSeparator)
			}
			_, _ = buf.WriteString(norm.NFC.String(key))
		}
	}

	return buf.String()
}

// Hash returns the lowercase hex SHA-256 digest of CanonicalString(s).
func Hash(s Snapshot) string {
	sum := sha256.Sum256([]byte(CanonicalString(s)))
	return hex.EncodeToString(sum[:])
}

// DedupeKey is the content hash identifying an event within a roster version.
// Replaying the same pass yields the same key.
func DedupeKey(leagueID, playerKey, fromTeamID, toTeamID string, eventType EventType, rosterHash string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fields := [...]string{leagueID, playerKey, fromTeamID, toTeamID, string(eventType), rosterHash}
	for i, field := range fields {
		if i > 0 {
			_ = buf.WriteByte(playerSeparator)
		}
		_, _ = buf.WriteString(field)
	}

	sum := sha256.Sum256(buf.B)
	return hex.EncodeToString(sum[:])
}

// Stamp fills the league, pass metadata and dedupe key of diff output.
func Stamp(events []OwnershipEvent, leagueID string, week, season int, source, rosterHash string) []OwnershipEvent {
	out := make([]OwnershipEvent, 0, len(events))
	for _, event := range events {
		event.LeagueID = leagueID
		event.Week = week
		event.Season = season
		event.Source = source
		event.RosterHash = rosterHash
		event.DedupeKey = DedupeKey(leagueID, event.PlayerKey, event.FromTeamID, event.ToTeamID, event.EventType, rosterHash)
		out = append(out, event)
	}
	return out
}
