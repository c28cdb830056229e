package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

// RoleLocationRepository reads role default locations, the geographic
// fallback for persons without personal assignments. Rows change rarely,
// so reads go through the reference cache when one is configured.
type RoleLocationRepository struct {
	db    *sqlx.DB
	cache *ReferenceCache
}

// NewRoleLocationRepository constructs the repository.
func NewRoleLocationRepository(db *sqlx.DB, cache *ReferenceCache) *RoleLocationRepository {
	return &RoleLocationRepository{db: db, cache: cache}
}

// GetByRoleID returns the role's default location, or nil when the role
// carries none.
func (r *RoleLocationRepository) GetByRoleID(ctx context.Context, roleID string) (*models.RoleLocation, error) {
	cacheKey := "role_location:" + roleID

	var cached models.RoleLocation
	if err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	const query = `SELECT role_id, district_id, town_id, division_id FROM role_locations WHERE role_id = $1`
	var location models.RoleLocation
	if err := r.db.GetContext(ctx, &location, query, roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role location: %w", err)
	}

	_ = r.cache.SetJSON(ctx, cacheKey, location)
	return &location, nil
}
