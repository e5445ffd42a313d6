package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	"github.com/riskibarqy/roster-sync/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingIdentityRepository struct {
	identity.Repository
	calls   int
	lastIDs []string
	err     error
}

func (r *countingIdentityRepository) LookupBatch(ctx context.Context, platform string, ids []string) (map[string]identity.Mapping, error) {
	r.calls++
	r.lastIDs = append([]string(nil), ids...)
	if r.err != nil {
		return nil, r.err
	}
	return r.Repository.LookupBatch(ctx, platform, ids)
}

func TestIdentityRepository_CachesHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	next := &countingIdentityRepository{Repository: memory.NewIdentityRepository([]identity.Mapping{
		{Platform: "sleeper", ExternalID: "4046", PrimaryKey: "player-1"},
	})}
	repo := NewIdentityRepository(next, time.Minute)

	got, err := repo.LookupBatch(ctx, "sleeper", []string{"4046", "9999", "4046"})
	require.NoError(t, err)
	assert.Equal(t, "player-1", got["4046"].PrimaryKey)
	assert.NotContains(t, got, "9999")
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, []string{"4046", "9999"}, next.lastIDs)

	got, err = repo.LookupBatch(ctx, "sleeper", []string{"4046", "9999"})
	require.NoError(t, err)
	assert.Equal(t, "player-1", got["4046"].PrimaryKey)
	assert.Equal(t, 1, next.calls, "second lookup must be served from cache")

	_, err = repo.LookupBatch(ctx, "sleeper", []string{"4046", "777"})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, []string{"777"}, next.lastIDs)
}

func TestIdentityRepository_UpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	next := &countingIdentityRepository{Repository: memory.NewIdentityRepository(nil)}
	repo := NewIdentityRepository(next, time.Minute)

	got, err := repo.LookupBatch(ctx, "sleeper", []string{"1"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Upsert(ctx, identity.Mapping{Platform: "sleeper", ExternalID: "1", SecondaryKey: "alt-1"}))

	got, err = repo.LookupBatch(ctx, "sleeper", []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, "alt-1", got["1"].SecondaryKey)
	assert.Equal(t, 2, next.calls)
}

func TestIdentityRepository_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingIdentityRepository{Repository: memory.NewIdentityRepository(nil), err: errors.New("db down")}
	repo := NewIdentityRepository(next, time.Minute)

	_, err := repo.LookupBatch(ctx, "sleeper", []string{"1"})
	require.Error(t, err)

	next.err = nil
	_, err = repo.LookupBatch(ctx, "sleeper", []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
