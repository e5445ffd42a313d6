package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/roster-sync/internal/domain/identity"
)

type IdentityRepository struct {
	mu    sync.RWMutex
	items map[string]identity.Mapping
}

func NewIdentityRepository(mappings []identity.Mapping) *IdentityRepository {
	items := make(map[string]identity.Mapping, len(mappings))
	for _, item := range mappings {
		items[identityKey(item.Platform, item.ExternalID)] = item
	}
	return &IdentityRepository{items: items}
}

func (r *IdentityRepository) LookupBatch(_ context.Context, platform string, externalIDs []string) (map[string]identity.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]identity.Mapping, len(externalIDs))
	for _, id := range externalIDs {
		if item, ok := r.items[identityKey(platform, id)]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r *IdentityRepository) Upsert(_ context.Context, mapping identity.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[identityKey(mapping.Platform, mapping.ExternalID)] = mapping
	return nil
}

func identityKey(platform, externalID string) string {
	return platform + "::" + externalID
}
