package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	basecache "github.com/riskibarqy/roster-sync/internal/platform/cache"
)

// cachedMapping remembers misses too, so unknown ids do not hit the store on
// every pass.
type cachedMapping struct {
	value  identity.Mapping
	exists bool
}

// IdentityRepository is a read-through decorator for identity mappings shared
// across passes. Entries expire after ttl; Upsert invalidates its key.
type IdentityRepository struct {
	next  identity.Repository
	cache *basecache.Store[cachedMapping]
}

func NewIdentityRepository(next identity.Repository, ttl time.Duration) *IdentityRepository {
	return &IdentityRepository{next: next, cache: basecache.NewStore[cachedMapping](ttl)}
}

func (r *IdentityRepository) LookupBatch(ctx context.Context, platform string, externalIDs []string) (map[string]identity.Mapping, error) {
	out := make(map[string]identity.Mapping, len(externalIDs))
	missing := make([]string, 0, len(externalIDs))
	seen := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		cached, ok := r.cache.Get(ctx, mappingKey(platform, id))
		if !ok {
			missing = append(missing, id)
			continue
		}
		if cached.exists {
			out[id] = cached.value
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := r.next.LookupBatch(ctx, platform, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		mapping, exists := loaded[id]
		r.cache.Set(ctx, mappingKey(platform, id), cachedMapping{value: mapping, exists: exists})
		if exists {
			out[id] = mapping
		}
	}
	return out, nil
}

func (r *IdentityRepository) Upsert(ctx context.Context, mapping identity.Mapping) error {
	if err := r.next.Upsert(ctx, mapping); err != nil {
		return err
	}
	r.cache.Delete(ctx, mappingKey(mapping.Platform, mapping.ExternalID))
	return nil
}

func mappingKey(platform, externalID string) string {
	return "identity:" + platform + ":" + externalID
}
