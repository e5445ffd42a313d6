package identity

import "context"

// Repository describes identity-mapping lookups needed by the resolver.
type Repository interface {
	// LookupBatch returns mappings keyed by external id. Ids without a row are
	// simply absent from the result.
	LookupBatch(ctx context.Context, platform string, externalIDs []string) (map[string]Mapping, error)
	Upsert(ctx context.Context, mapping Mapping) error
}
