package usecase

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	"github.com/riskibarqy/roster-sync/internal/platform/cache"
	"github.com/riskibarqy/roster-sync/internal/platform/logging"
)

// ResolverObserver receives one call per resolved external id.
type ResolverObserver interface {
	ObserveResolution(platform string, source identity.Source)
}

// IdentityResolver maps external player ids to canonical player keys. It never
// fails: lookup errors and misses produce "<platform>:<externalId>".
//
// A resolver owns its cache and counters and is meant to live for exactly
// one sync pass.
type IdentityResolver struct {
	platform string
	repo     identity.Repository
	cache    *cache.Store[identity.Resolution]
	observer ResolverObserver
	logger   *logging.Logger

	lookups      atomic.Int64
	primary      atomic.Int64
	secondary    atomic.Int64
	unresolved   atomic.Int64
	cacheHits    atomic.Int64
	lookupErrors atomic.Int64
}

func NewIdentityResolver(platform string, repo identity.Repository, observer ResolverObserver, logger *logging.Logger) *IdentityResolver {
	if logger == nil {
		logger = logging.Default()
	}

	return &IdentityResolver{
		platform: strings.TrimSpace(platform),
		repo:     repo,
		cache:    cache.NewStore[identity.Resolution](0),
		observer: observer,
		logger:   logger,
	}
}

// Reset clears the cache and the counters.
func (r *IdentityResolver) Reset() {
	r.cache.Reset()
	r.lookups.Store(0)
	r.primary.Store(0)
	r.secondary.Store(0)
	r.unresolved.Store(0)
	r.cacheHits.Store(0)
	r.lookupErrors.Store(0)
}

func (r *IdentityResolver) Stats() rostersync.ResolverStats {
	return rostersync.ResolverStats{
		Lookups:     r.lookups.Load(),
		Primary:     r.primary.Load(),
		Secondary:   r.secondary.Load(),
		Unresolved:  r.unresolved.Load(),
		CacheHits:   r.cacheHits.Load(),
		LookupError: r.lookupErrors.Load(),
	}
}

// Resolve returns the canonical key for one external id.
func (r *IdentityResolver) Resolve(ctx context.Context, externalID string) string {
	return r.ResolveDetailed(ctx, externalID).Key
}

func (r *IdentityResolver) ResolveDetailed(ctx context.Context, externalID string) identity.Resolution {
	if cached, ok := r.cache.Get(ctx, externalID); ok {
		r.cacheHits.Add(1)
		r.count(cached)
		return cached
	}

	resolution, _ := r.cache.GetOrLoad(ctx, externalID, func(ctx context.Context) (identity.Resolution, error) {
		return r.lookup(ctx, []string{externalID})[externalID], nil
	})
	if resolution.Key == "" {
		resolution = identity.Resolve(r.platform, externalID, identity.Mapping{}, false)
	}
	r.count(resolution)
	return resolution
}

// ResolveBatch resolves every id, issuing at most one repository query for
// the ids not already cached.
func (r *IdentityResolver) ResolveBatch(ctx context.Context, externalIDs []string) map[string]string {
	detailed := r.ResolveBatchDetailed(ctx, externalIDs)
	out := make(map[string]string, len(detailed))
	for id, resolution := range detailed {
		out[id] = resolution.Key
	}
	return out
}

func (r *IdentityResolver) ResolveBatchDetailed(ctx context.Context, externalIDs []string) map[string]identity.Resolution {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityResolver.ResolveBatch")
	defer span.End()

	out := make(map[string]identity.Resolution, len(externalIDs))
	missing := r.cache.Missing(ctx, externalIDs)
	loaded := map[string]identity.Resolution{}
	if len(missing) > 0 {
		loaded = r.lookup(ctx, missing)
		for id, resolution := range loaded {
			r.cache.Set(ctx, id, resolution)
		}
	}

	for _, id := range externalIDs {
		if id == "" {
			continue
		}
		if _, done := out[id]; done {
			continue
		}
		if resolution, ok := loaded[id]; ok {
			out[id] = resolution
			r.count(resolution)
			continue
		}
		if cached, ok := r.cache.Get(ctx, id); ok {
			r.cacheHits.Add(1)
			out[id] = cached
			r.count(cached)
		}
	}

	return out
}

// lookup runs one repository query for ids and folds errors and misses into
// fallback resolutions.
func (r *IdentityResolver) lookup(ctx context.Context, ids []string) map[string]identity.Resolution {
	out := make(map[string]identity.Resolution, len(ids))

	var mappings map[string]identity.Mapping
	if r.repo != nil {
		var err error
		mappings, err = r.repo.LookupBatch(ctx, r.platform, ids)
		if err != nil {
			r.lookupErrors.Add(1)
			r.logger.WarnContext(ctx, "identity lookup failed, using fallback keys",
				"platform", r.platform,
				"ids", len(ids),
				"error", err,
			)
			mappings = nil
		}
	}

	for _, id := range ids {
		mapping, found := mappings[id]
		out[id] = identity.Resolve(r.platform, id, mapping, found)
	}
	return out
}

func (r *IdentityResolver) count(resolution identity.Resolution) {
	r.lookups.Add(1)
	switch resolution.Source {
	case identity.SourcePrimary:
		r.primary.Add(1)
	case identity.SourceSecondary:
		r.secondary.Add(1)
	default:
		r.unresolved.Add(1)
	}
	if r.observer != nil {
		r.observer.ObserveResolution(r.platform, resolution.Source)
	}
}
