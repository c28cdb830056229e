package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SLARepository looks up SLA hours for role pairs. Lookups are fail-soft
// at the service layer; this type just reports errors faithfully.
type SLARepository struct {
	db    *sqlx.DB
	cache *ReferenceCache
}

// NewSLARepository constructs the repository.
func NewSLARepository(db *sqlx.DB, cache *ReferenceCache) *SLARepository {
	return &SLARepository{db: db, cache: cache}
}

// GetHours returns the configured SLA hours for the (from, to) role pair.
// sql.ErrNoRows is returned unwrapped when the matrix has no entry.
func (r *SLARepository) GetHours(ctx context.Context, fromRoleCode, toRoleCode string) (int, error) {
	from := strings.ToUpper(strings.TrimSpace(fromRoleCode))
	to := strings.ToUpper(strings.TrimSpace(toRoleCode))
	cacheKey := fmt.Sprintf("sla_hours:%s:%s", from, to)

	var cached int
	if err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	const query = `SELECT hours FROM sla_rules WHERE from_role_code = $1 AND to_role_code = $2`
	var hours int
	if err := r.db.GetContext(ctx, &hours, query, from, to); err != nil {
		return 0, err
	}

	_ = r.cache.SetJSON(ctx, cacheKey, hours)
	return hours, nil
}
