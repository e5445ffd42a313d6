package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/roster-sync/internal/domain/identity"
	qb "github.com/riskibarqy/roster-sync/internal/platform/querybuilder"
)

type IdentityRepository struct {
	db *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) LookupBatch(ctx context.Context, platform string, externalIDs []string) (map[string]identity.Mapping, error) {
	out := make(map[string]identity.Mapping, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("platform", "external_id", "canonical_player_id", "secondary_player_key").
		From("player_identity_mappings").
		Where(
			qb.Eq("platform", platform),
			qb.InStrings("external_id", externalIDs),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select identity mappings query: %w", err)
	}

	var rows []identityMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select identity mappings: %w", err)
	}

	for _, row := range rows {
		out[row.ExternalID] = identity.Mapping{
			Platform:     row.Platform,
			ExternalID:   row.ExternalID,
			PrimaryKey:   stringFromNull(row.CanonicalPlayerID),
			SecondaryKey: stringFromNull(row.SecondaryPlayerKey),
		}
	}
	return out, nil
}

func (r *IdentityRepository) Upsert(ctx context.Context, mapping identity.Mapping) error {
	query, args, err := qb.InsertModel("player_identity_mappings", identityMappingTableModel{
		Platform:           mapping.Platform,
		ExternalID:         mapping.ExternalID,
		CanonicalPlayerID:  nullableString(mapping.PrimaryKey),
		SecondaryPlayerKey: nullableString(mapping.SecondaryKey),
	}, `ON CONFLICT (platform, external_id) DO UPDATE SET
    canonical_player_id = EXCLUDED.canonical_player_id,
    secondary_player_key = EXCLUDED.secondary_player_key,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert identity mapping query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert identity mapping: %w", err)
	}
	return nil
}
