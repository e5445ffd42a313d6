package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	"github.com/riskibarqy/roster-sync/internal/platform/logging"
)

type leagueBatchSyncer interface {
	SyncLeagues(ctx context.Context, leagueIDs []string, opts rostersync.Options) ([]rostersync.Result, error)
}

// RosterSyncScheduler triggers batch passes for a fixed league list on an interval.
type RosterSyncScheduler struct {
	syncer    leagueBatchSyncer
	leagueIDs []string
	interval  time.Duration
	opts      rostersync.Options
	logger    *logging.Logger
}

func NewRosterSyncScheduler(
	syncer leagueBatchSyncer,
	leagueIDs []string,
	interval time.Duration,
	opts rostersync.Options,
	logger *logging.Logger,
) *RosterSyncScheduler {
	if logger == nil {
		logger = logging.Default()
	}

	ids := make([]string, 0, len(leagueIDs))
	seen := make(map[string]struct{}, len(leagueIDs))
	for _, id := range leagueIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return &RosterSyncScheduler{
		syncer:    syncer,
		leagueIDs: ids,
		interval:  interval,
		opts:      opts,
		logger:    logger,
	}
}

// Run ticks immediately and then every interval until ctx is done.
func (s *RosterSyncScheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("roster sync interval must be > 0")
	}
	if len(s.leagueIDs) == 0 {
		s.logger.Warn("roster sync scheduler has no leagues configured")
		<-ctx.Done()
		return nil
	}

	s.logger.Info("roster sync scheduler started", "leagues", len(s.leagueIDs), "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Tick(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("roster sync scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one batch over all configured leagues.
func (s *RosterSyncScheduler) Tick(ctx context.Context) []rostersync.Result {
	ctx, span := usecaseTracer.Start(ctx, "usecase.RosterSyncScheduler.Tick")
	defer span.End()

	results, err := s.syncer.SyncLeagues(ctx, s.leagueIDs, s.opts)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled roster sync failed", "error", err)
		return nil
	}

	var failed, skipped int
	var events int64
	for _, result := range results {
		switch {
		case !result.Success:
			failed++
		case result.ShortCircuited:
			skipped++
		}
		events += result.EventsInserted
	}
	s.logger.InfoContext(ctx, "scheduled roster sync finished",
		"leagues", len(results),
		"failed", failed,
		"short_circuited", skipped,
		"events_inserted", events,
	)
	return results
}
