package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRepository_LookupBatchUsesSingleQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIdentityRepository(db)

	mock.ExpectQuery(`SELECT platform, external_id, canonical_player_id, secondary_player_key FROM player_identity_mappings WHERE platform = $1 AND external_id IN ($2, $3, $4)`).
		WithArgs("sleeper", "4046", "6794", "1111").
		WillReturnRows(sqlmock.NewRows([]string{"platform", "external_id", "canonical_player_id", "secondary_player_key"}).
			AddRow("sleeper", "4046", "nfl-mahomes", nil).
			AddRow("sleeper", "6794", nil, "gsis-jefferson"))

	got, err := repo.LookupBatch(context.Background(), "sleeper", []string{"4046", "6794", "1111"})
	require.NoError(t, err)
	assert.Equal(t, map[string]identity.Mapping{
		"4046": {Platform: "sleeper", ExternalID: "4046", PrimaryKey: "nfl-mahomes"},
		"6794": {Platform: "sleeper", ExternalID: "6794", SecondaryKey: "gsis-jefferson"},
	}, got)
}

func TestIdentityRepository_LookupBatchSkipsEmptyInput(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewIdentityRepository(db)

	got, err := repo.LookupBatch(context.Background(), "sleeper", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIdentityRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewIdentityRepository(db)

	mock.ExpectExec(`INSERT INTO player_identity_mappings (platform, external_id, canonical_player_id, secondary_player_key) VALUES ($1, $2, $3, $4) ON CONFLICT (platform, external_id) DO UPDATE SET
    canonical_player_id = EXCLUDED.canonical_player_id,
    secondary_player_key = EXCLUDED.secondary_player_key,
    updated_at = NOW()`).
		WithArgs("sleeper", "4046", "nfl-mahomes", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), identity.Mapping{Platform: "sleeper", ExternalID: "4046", PrimaryKey: "nfl-mahomes"})
	require.NoError(t, err)
}
