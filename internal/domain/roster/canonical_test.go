package roster

import (
	"strings"
	"testing"
)

func TestCanonicalString_IgnoresInsertionOrder(t *testing.T) {
	t.Parallel()

	left := NewSnapshot()
	left.Add("2", "b")
	left.Add("1", "c")
	left.Add("1", "a")

	right := NewSnapshot()
	right.Add("1", "a")
	right.Add("1", "c")
	right.Add("2", "b")

	if CanonicalString(left) != CanonicalString(right) {
		t.Fatalf("canonical strings differ: %q vs %q", CanonicalString(left), CanonicalString(right))
	}
	if Hash(left) != Hash(right) {
		t.Fatalf("hashes differ for equal snapshots")
	}
}

func TestCanonicalString_SkipsEmptyTeams(t *testing.T) {
	t.Parallel()

	withEmpty := snapshotOf(map[string][]string{"1": {"a"}})
	withEmpty["9"] = map[string]struct{}{}

	if Hash(withEmpty) != Hash(snapshotOf(map[string][]string{"1": {"a"}})) {
		t.Fatalf("empty team should not affect hash")
	}
}

func TestCanonicalString_NormalizesUnicode(t *testing.T) {
	t.Parallel()

	composed := snapshotOf(map[string][]string{"1": {"sleeper:jos\u00e9"}})
	decomposed := snapshotOf(map[string][]string{"1": {"sleeper:jose\u0301"}})

	if Hash(composed) != Hash(decomposed) {
		t.Fatalf("expected NFC-equivalent keys to hash equally")
	}
}

func TestHash_ChangesWithOwnership(t *testing.T) {
	t.Parallel()

	before := snapshotOf(map[string][]string{"1": {"a"}, "2": {"b"}})
	after := snapshotOf(map[string][]string{"1": {"b"}, "2": {"a"}})

	if Hash(before) == Hash(after) {
		t.Fatalf("expected different hashes after a trade")
	}
	if got := Hash(before); len(got) != 64 || strings.ToLower(got) != got {
		t.Fatalf("expected lowercase sha256 hex, got %q", got)
	}
	if Hash(NewSnapshot()) == "" {
		t.Fatalf("expected hash of empty snapshot")
	}
}

func TestDedupeKey_StableAndFieldSensitive(t *testing.T) {
	t.Parallel()

	base := DedupeKey("L", "p", "1", "2", EventMove, "h")
	if base != DedupeKey("L", "p", "1", "2", EventMove, "h") {
		t.Fatalf("dedupe key must be deterministic")
	}

	variants := []string{
		DedupeKey("L2", "p", "1", "2", EventMove, "h"),
		DedupeKey("L", "q", "1", "2", EventMove, "h"),
		DedupeKey("L", "p", "", "2", EventAdd, "h"),
		DedupeKey("L", "p", "1", "2", EventMove, "h2"),
		DedupeKey("L", "p1", "", "2", EventMove, "h"),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with base key", i)
		}
	}
}

func TestStamp(t *testing.T) {
	t.Parallel()

	events := Stamp([]OwnershipEvent{
		{PlayerKey: "a", ToTeamID: "1", EventType: EventAdd},
	}, "L", 3, 2025, "sleeper", "abc")

	got := events[0]
	if got.LeagueID != "L" || got.Week != 3 || got.Season != 2025 || got.Source != "sleeper" || got.RosterHash != "abc" {
		t.Fatalf("unexpected stamped event: %+v", got)
	}
	if got.DedupeKey != DedupeKey("L", "a", "", "1", EventAdd, "abc") {
		t.Fatalf("unexpected dedupe key %q", got.DedupeKey)
	}
}
