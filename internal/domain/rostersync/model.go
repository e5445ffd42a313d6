package rostersync

import "time"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusError   Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusRunning, StatusOK, StatusError:
		return true
	default:
		return false
	}
}

// State is the persisted per-league sync state row.
type State struct {
	LeagueID       string
	Status         Status
	LastSyncedAt   *time.Time
	LastDurationMs *int64
	LastHash       string
	LastError      string
	UpdatedAt      time.Time
}

// StateUpdate carries a status transition. Nil fields are left unchanged by
// the store.
type StateUpdate struct {
	LeagueID       string
	Status         Status
	LastSyncedAt   *time.Time
	LastDurationMs *int64
	LastHash       *string
	LastError      *string
}

// ExternalRoster is one team as reported by the external platform.
type ExternalRoster struct {
	TeamID            string
	ExternalPlayerIDs []string
}

// Options tunes a single sync pass.
type Options struct {
	Force  bool
	Week   int
	Season int
}

// ResolverStats are the identity resolver counters for one pass.
type ResolverStats struct {
	Lookups     int64 `json:"lookups"`
	Primary     int64 `json:"primary"`
	Secondary   int64 `json:"secondary"`
	Unresolved  int64 `json:"unresolved"`
	CacheHits   int64 `json:"cache_hits"`
	LookupError int64 `json:"lookup_errors"`
}

// Result is the structured outcome of one sync pass.
type Result struct {
	LeagueID       string
	RunID          string
	Success        bool
	EventsInserted int64
	ShortCircuited bool
	Duration       time.Duration
	Hash           string
	Error          string
	Conflicts      int
	ResolverStats  ResolverStats
}

func (r Result) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// Verification compares the replayed event log against the current roster.
type Verification struct {
	LeagueID     string
	EventCount   int
	ReplayedHash string
	CurrentHash  string
	Consistent   bool
	Drift        []DriftEntry
}

type DriftEntry struct {
	PlayerKey      string
	ReplayedTeamID string
	CurrentTeamID  string
}
