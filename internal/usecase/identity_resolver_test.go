package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	identitymock "github.com/riskibarqy/roster-sync/internal/mocks/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver_ResolveBatch_SingleQueryForUncachedIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := identitymock.NewRepository(t)
	repo.
		On("LookupBatch", mock.Anything, "sleeper", []string{"1", "2", "3"}).
		Return(map[string]identity.Mapping{
			"1": {Platform: "sleeper", ExternalID: "1", PrimaryKey: "nfl-1", SecondaryKey: "gsis-1"},
			"2": {Platform: "sleeper", ExternalID: "2", SecondaryKey: "gsis-2"},
		}, nil).
		Once()

	resolver := NewIdentityResolver("sleeper", repo, nil, nil)

	got := resolver.ResolveBatch(ctx, []string{"1", "2", "1", "3"})
	assert.Equal(t, map[string]string{"1": "nfl-1", "2": "gsis-2", "3": "sleeper:3"}, got)
	assert.Equal(t, rostersync.ResolverStats{Lookups: 3, Primary: 1, Secondary: 1, Unresolved: 1}, resolver.Stats())

	again := resolver.ResolveBatch(ctx, []string{"3", "2"})
	assert.Equal(t, map[string]string{"2": "gsis-2", "3": "sleeper:3"}, again)

	stats := resolver.Stats()
	assert.Equal(t, int64(5), stats.Lookups)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(2), stats.Unresolved)
}

func TestIdentityResolver_NeverFailsOnLookupError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := identitymock.NewRepository(t)
	repo.
		On("LookupBatch", mock.Anything, "sleeper", []string{"42"}).
		Return(nil, errors.New("connection refused")).
		Once()

	resolver := NewIdentityResolver("sleeper", repo, nil, nil)

	key := resolver.Resolve(ctx, "42")
	assert.Equal(t, "sleeper:42", key)

	stats := resolver.Stats()
	assert.Equal(t, int64(1), stats.Unresolved)
	assert.Equal(t, int64(1), stats.LookupError)

	// The fallback is cached for the rest of the pass.
	assert.Equal(t, "sleeper:42", resolver.Resolve(ctx, "42"))
	assert.Equal(t, int64(1), resolver.Stats().CacheHits)
}

func TestIdentityResolver_ResetClearsCacheAndCounters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := identitymock.NewRepository(t)
	repo.
		On("LookupBatch", mock.Anything, "sleeper", []string{"7"}).
		Return(map[string]identity.Mapping{"7": {PrimaryKey: "nfl-7"}}, nil).
		Twice()

	resolver := NewIdentityResolver("sleeper", repo, nil, nil)
	require.Equal(t, "nfl-7", resolver.Resolve(ctx, "7"))

	resolver.Reset()
	assert.Equal(t, rostersync.ResolverStats{}, resolver.Stats())

	require.Equal(t, "nfl-7", resolver.Resolve(ctx, "7"))
	assert.Equal(t, int64(1), resolver.Stats().Primary)
}

func TestIdentityResolver_WithoutRepositoryFallsBack(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	resolver := NewIdentityResolver("espn", nil, observer, nil)

	got := resolver.ResolveBatch(context.Background(), []string{"a", ""})
	assert.Equal(t, map[string]string{"a": "espn:a"}, got)
	assert.Equal(t, []identity.Source{identity.SourceFallback}, observer.sources)
}

type recordingObserver struct {
	sources []identity.Source
}

func (o *recordingObserver) ObserveResolution(_ string, source identity.Source) {
	o.sources = append(o.sources, source)
}
