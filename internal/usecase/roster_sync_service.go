package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	"github.com/riskibarqy/roster-sync/internal/domain/roster"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	"github.com/riskibarqy/roster-sync/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SyncMetrics records pass outcomes and resolver coverage.
type SyncMetrics interface {
	ResolverObserver
	ObservePass(result rostersync.Result)
}

type RosterSyncConfig struct {
	// Platform namespaces fallback keys and identity lookups, e.g. "sleeper".
	Platform      string
	Source        string
	DefaultWeek   int
	DefaultSeason int
	MaxWorkers    int
}

const (
	defaultRosterSyncWorkers = 4
	defaultEventListLimit    = 100
	maxEventListLimit        = 1000
)

// RosterSyncService runs synchronization passes and serves the read side of
// the ownership log.
type RosterSyncService struct {
	cfg        RosterSyncConfig
	fetcher    rostersync.RosterFetcher
	repo       rostersync.Repository
	identities identity.Repository
	metrics    SyncMetrics
	logger     *logging.Logger

	now      func() time.Time
	newRunID func() string
}

func NewRosterSyncService(
	cfg RosterSyncConfig,
	fetcher rostersync.RosterFetcher,
	repo rostersync.Repository,
	identities identity.Repository,
	metrics SyncMetrics,
	logger *logging.Logger,
) *RosterSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = noopSyncMetrics{}
	}
	cfg.Platform = strings.TrimSpace(cfg.Platform)
	if strings.TrimSpace(cfg.Source) == "" {
		cfg.Source = cfg.Platform
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultRosterSyncWorkers
	}

	return &RosterSyncService{
		cfg:        cfg,
		fetcher:    fetcher,
		repo:       repo,
		identities: identities,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// SyncLeague runs one pass for leagueID. It never returns an error: failures
// are recorded in the league's sync state and reported in the result.
// The pass ignores cancellation of ctx so its outcome is always recorded.
func (s *RosterSyncService) SyncLeague(ctx context.Context, leagueID string, opts rostersync.Options) rostersync.Result {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.SyncLeague")
	defer span.End()
	ctx = context.WithoutCancel(ctx)

	start := s.now()
	leagueID = strings.TrimSpace(leagueID)
	result := rostersync.Result{
		LeagueID: leagueID,
		RunID:    s.newRunID(),
	}
	if leagueID == "" {
		result.Error = fmt.Errorf("%w: league id is required", ErrInvalidInput).Error()
		return result
	}

	logger := s.logger.With("league_id", leagueID, "run_id", result.RunID)
	logger.DebugContext(ctx, "roster sync pass started", "force", opts.Force)

	var passErr error
	var catcher panics.Catcher
	catcher.Try(func() {
		passErr = s.runPass(ctx, leagueID, opts, start, &result, logger)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		passErr = fmt.Errorf("roster sync panicked: %w", recovered.AsError())
	}

	result.Duration = s.now().Sub(start)
	switch {
	case passErr != nil:
		result.EventsInserted = 0
		result.ShortCircuited = false
		result.Error = passErr.Error()
		s.recordFailure(ctx, leagueID, &result, logger)
		span.RecordError(passErr)
		span.SetStatus(codes.Error, passErr.Error())
	case result.ShortCircuited:
		s.recordShortCircuit(ctx, leagueID, &result, logger)
	default:
		result.Success = true
	}

	span.SetAttributes(
		attribute.String("roster_sync.league_id", leagueID),
		attribute.Bool("roster_sync.success", result.Success),
		attribute.Bool("roster_sync.short_circuited", result.ShortCircuited),
		attribute.Int64("roster_sync.events_inserted", result.EventsInserted),
	)
	s.metrics.ObservePass(result)
	return result
}

func (s *RosterSyncService) runPass(
	ctx context.Context,
	leagueID string,
	opts rostersync.Options,
	start time.Time,
	result *rostersync.Result,
	logger *logging.Logger,
) error {
	if s.repo == nil || s.fetcher == nil {
		return fmt.Errorf("%w: roster sync is not fully configured", ErrDependencyUnavailable)
	}

	if err := s.repo.Upsert(ctx, rostersync.StateUpdate{
		LeagueID: leagueID,
		Status:   rostersync.StatusRunning,
	}); err != nil {
		return fmt.Errorf("mark sync running: %w", err)
	}

	rosters, err := s.fetcher.FetchRosters(ctx, leagueID)
	if err != nil {
		logger.WarnContext(ctx, "fetch rosters failed", "error", err)
		return fmt.Errorf("fetch rosters: %w", err)
	}

	resolver := NewIdentityResolver(s.cfg.Platform, s.identities, s.metrics, s.logger)
	next, conflicts := s.buildSnapshot(ctx, rosters, resolver)
	result.ResolverStats = resolver.Stats()
	result.Conflicts = len(conflicts)
	for _, c := range conflicts {
		logger.WarnContext(ctx, "player listed on multiple teams, keeping first owner",
			"player_key", c.PlayerKey,
			"teams", c.TeamIDs,
		)
	}

	nextHash := roster.Hash(next)
	result.Hash = nextHash

	week, season := s.passPeriod(opts)
	var inserted int64
	shortCircuited := false
	err = s.repo.RunInLeagueTx(ctx, leagueID, func(ctx context.Context, tx rostersync.Tx) error {
		lastHash, found, err := tx.LockState(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("lock sync state: %w", err)
		}
		if !opts.Force && found && lastHash == nextHash {
			shortCircuited = true
			return nil
		}

		rows, err := tx.ListRoster(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("load previous roster: %w", err)
		}
		prev := roster.FromRows(rows)

		events := roster.Stamp(roster.Diff(prev, next), leagueID, week, season, s.cfg.Source, nextHash)
		inserted, err = tx.InsertEvents(ctx, events)
		if err != nil {
			return fmt.Errorf("insert ownership events: %w", err)
		}

		if err := tx.ReplaceRoster(ctx, leagueID, next.Rows(leagueID)); err != nil {
			return fmt.Errorf("replace current roster: %w", err)
		}

		finishedAt := s.now()
		durationMs := finishedAt.Sub(start).Milliseconds()
		noError := ""
		if err := tx.UpsertState(ctx, rostersync.StateUpdate{
			LeagueID:       leagueID,
			Status:         rostersync.StatusOK,
			LastSyncedAt:   &finishedAt,
			LastDurationMs: &durationMs,
			LastHash:       &nextHash,
			LastError:      &noError,
		}); err != nil {
			return fmt.Errorf("mark sync ok: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "persist roster sync failed", "error", err)
		return err
	}

	result.ShortCircuited = shortCircuited
	result.EventsInserted = inserted
	if shortCircuited {
		logger.InfoContext(ctx, "roster unchanged, sync short-circuited", "hash", nextHash)
		return nil
	}

	stats := result.ResolverStats
	logger.InfoContext(ctx, "roster sync committed",
		"hash", nextHash,
		"events_inserted", inserted,
		"players", next.PlayerCount(),
		"teams", len(next),
		"resolver_lookups", stats.Lookups,
		"resolver_primary", stats.Primary,
		"resolver_secondary", stats.Secondary,
		"resolver_unresolved", stats.Unresolved,
	)
	if stats.Unresolved > 0 {
		logger.WarnContext(ctx, "players resolved to fallback keys",
			"platform", s.cfg.Platform,
			"unresolved", stats.Unresolved,
		)
	}
	return nil
}

// buildSnapshot resolves every external id with one batch call. Teams are
// visited in id order so when a player is listed twice the smallest team id
// keeps it.
func (s *RosterSyncService) buildSnapshot(
	ctx context.Context,
	rosters []rostersync.ExternalRoster,
	resolver *IdentityResolver,
) (roster.Snapshot, []roster.OwnershipConflict) {
	sorted := append([]rostersync.ExternalRoster(nil), rosters...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TeamID < sorted[j].TeamID })

	externalIDs := make([]string, 0)
	for _, item := range sorted {
		for _, id := range item.ExternalPlayerIDs {
			if id = strings.TrimSpace(id); id != "" {
				externalIDs = append(externalIDs, id)
			}
		}
	}
	keys := resolver.ResolveBatch(ctx, externalIDs)

	next := roster.NewSnapshot()
	owners := make(map[string]string, len(externalIDs))
	conflictTeams := make(map[string][]string)
	for _, item := range sorted {
		teamID := strings.TrimSpace(item.TeamID)
		for _, id := range item.ExternalPlayerIDs {
			key, ok := keys[strings.TrimSpace(id)]
			if !ok {
				continue
			}
			if owner, owned := owners[key]; owned {
				if owner != teamID {
					if len(conflictTeams[key]) == 0 {
						conflictTeams[key] = []string{owner}
					}
					conflictTeams[key] = append(conflictTeams[key], teamID)
				}
				continue
			}
			owners[key] = teamID
			next.Add(teamID, key)
		}
	}

	conflicts := make([]roster.OwnershipConflict, 0, len(conflictTeams))
	for key, teams := range conflictTeams {
		conflicts = append(conflicts, roster.OwnershipConflict{PlayerKey: key, TeamIDs: teams})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].PlayerKey < conflicts[j].PlayerKey })
	return next, conflicts
}

func (s *RosterSyncService) passPeriod(opts rostersync.Options) (int, int) {
	week, season := opts.Week, opts.Season
	if week <= 0 {
		week = s.cfg.DefaultWeek
	}
	if season <= 0 {
		season = s.cfg.DefaultSeason
	}
	return week, season
}

func (s *RosterSyncService) recordShortCircuit(ctx context.Context, leagueID string, result *rostersync.Result, logger *logging.Logger) {
	syncedAt := s.now()
	durationMs := result.Duration.Milliseconds()
	hash := result.Hash
	noError := ""
	if err := s.repo.Upsert(ctx, rostersync.StateUpdate{
		LeagueID:       leagueID,
		Status:         rostersync.StatusOK,
		LastSyncedAt:   &syncedAt,
		LastDurationMs: &durationMs,
		LastHash:       &hash,
		LastError:      &noError,
	}); err != nil {
		logger.ErrorContext(ctx, "mark short-circuited sync ok failed", "error", err)
		result.Error = fmt.Errorf("mark sync ok: %w", err).Error()
		result.ShortCircuited = false
		s.recordFailure(ctx, leagueID, result, logger)
		return
	}
	result.Success = true
}

func (s *RosterSyncService) recordFailure(ctx context.Context, leagueID string, result *rostersync.Result, logger *logging.Logger) {
	if s.repo == nil {
		return
	}

	durationMs := result.Duration.Milliseconds()
	message := result.Error
	if err := s.repo.Upsert(ctx, rostersync.StateUpdate{
		LeagueID:       leagueID,
		Status:         rostersync.StatusError,
		LastDurationMs: &durationMs,
		LastError:      &message,
	}); err != nil {
		logger.ErrorContext(ctx, "record sync failure failed", "error", err, "sync_error", message)
		result.Error = message + "; record sync state: " + err.Error()
	}
}

// SyncLeagues runs independent passes on a bounded worker pool. Results are
// returned in the order of leagueIDs.
func (s *RosterSyncService) SyncLeagues(ctx context.Context, leagueIDs []string, opts rostersync.Options) ([]rostersync.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.SyncLeagues")
	defer span.End()

	return runPool(ctx, s.cfg.MaxWorkers, leagueIDs, func(ctx context.Context, leagueID string) rostersync.Result {
		return s.SyncLeague(ctx, leagueID, opts)
	})
}

func (s *RosterSyncService) GetSyncStatus(ctx context.Context, leagueID string) (*rostersync.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.GetSyncStatus")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	state, found, err := s.repo.Get(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get sync state league=%s: %w", leagueID, err)
	}
	if !found {
		return nil, nil
	}
	return &state, nil
}

// GetUnresolvedPlayerCount counts current-roster rows holding a fallback key.
func (s *RosterSyncService) GetUnresolvedPlayerCount(ctx context.Context, leagueID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.GetUnresolvedPlayerCount")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return 0, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	count, err := s.repo.CountRosterKeysWithPrefix(ctx, leagueID, identity.FallbackPrefix(s.cfg.Platform))
	if err != nil {
		return 0, fmt.Errorf("count unresolved players league=%s: %w", leagueID, err)
	}
	return count, nil
}

func (s *RosterSyncService) GetCurrentRoster(ctx context.Context, leagueID string) (roster.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.GetCurrentRoster")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	rows, err := s.repo.ListRoster(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list roster league=%s: %w", leagueID, err)
	}
	return roster.FromRows(rows), nil
}

// ListOwnershipEvents returns up to limit events in insertion order. A zero
// limit uses the default page size.
func (s *RosterSyncService) ListOwnershipEvents(ctx context.Context, leagueID string, limit int) ([]roster.OwnershipEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.ListOwnershipEvents")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	case limit == 0:
		limit = defaultEventListLimit
	case limit > maxEventListLimit:
		limit = maxEventListLimit
	}

	events, err := s.repo.ListEvents(ctx, leagueID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ownership events league=%s: %w", leagueID, err)
	}
	return events, nil
}

// VerifyLeague replays the full event log and compares it with the current
// roster table.
func (s *RosterSyncService) VerifyLeague(ctx context.Context, leagueID string) (rostersync.Verification, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.VerifyLeague")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return rostersync.Verification{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	events, err := s.repo.ListEvents(ctx, leagueID, 0)
	if err != nil {
		return rostersync.Verification{}, fmt.Errorf("list ownership events league=%s: %w", leagueID, err)
	}
	rows, err := s.repo.ListRoster(ctx, leagueID)
	if err != nil {
		return rostersync.Verification{}, fmt.Errorf("list roster league=%s: %w", leagueID, err)
	}

	replayed := roster.Replay(events)
	current := roster.FromRows(rows)
	drift := roster.Compare(replayed, current)

	out := rostersync.Verification{
		LeagueID:     leagueID,
		EventCount:   len(events),
		ReplayedHash: roster.Hash(replayed),
		CurrentHash:  roster.Hash(current),
		Consistent:   len(drift) == 0,
		Drift:        make([]rostersync.DriftEntry, 0, len(drift)),
	}
	for _, d := range drift {
		out.Drift = append(out.Drift, rostersync.DriftEntry{
			PlayerKey:      d.PlayerKey,
			ReplayedTeamID: d.ReplayedTeamID,
			CurrentTeamID:  d.CurrentTeamID,
		})
	}
	if !out.Consistent {
		s.logger.WarnContext(ctx, "ownership log drifted from current roster",
			"league_id", leagueID,
			"drifted_players", len(drift),
		)
	}
	return out, nil
}

type noopSyncMetrics struct{}

func (noopSyncMetrics) ObserveResolution(string, identity.Source) {}
func (noopSyncMetrics) ObservePass(rostersync.Result)             {}
