package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PermissionRepository answers per-file marking permission questions:
// canMarkFile and the forward/signature precondition check.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs the repository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// CanMarkFile reports whether the person currently holds the file, created
// it, or carries an explicit grant.
func (r *PermissionRepository) CanMarkFile(ctx context.Context, fileID, personID string) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM case_files f
WHERE f.id = $1 AND (f.assigned_to = $2 OR f.created_by = $2)
UNION
SELECT 1 FROM file_permissions fp
WHERE fp.file_id = $1 AND fp.person_id = $2 AND fp.can_mark = TRUE)`
	var allowed bool
	if err := r.db.GetContext(ctx, &allowed, query, fileID, personID); err != nil {
		return false, fmt.Errorf("check mark permission: %w", err)
	}
	return allowed, nil
}

// ForwardCheck is the canMarkFileForward collaborator result.
type ForwardCheck struct {
	RequiresSignature bool
	CanMark           bool
	Reason            string
}

// CanMarkFileForward verifies the e-signature precondition for an
// actor-to-target forward on files whose type demands signing.
func (r *PermissionRepository) CanMarkFileForward(ctx context.Context, fileID, fromPersonID, toPersonID string) (*ForwardCheck, error) {
	const query = `SELECT requires_signature FROM case_files WHERE id = $1`
	var requiresSignature bool
	if err := r.db.GetContext(ctx, &requiresSignature, query, fileID); err != nil {
		return nil, fmt.Errorf("load signature requirement: %w", err)
	}
	if !requiresSignature {
		return &ForwardCheck{RequiresSignature: false, CanMark: true}, nil
	}

	const signedQuery = `SELECT EXISTS (
SELECT 1 FROM file_signatures WHERE file_id = $1 AND person_id = $2)`
	var signed bool
	if err := r.db.GetContext(ctx, &signed, signedQuery, fileID, fromPersonID); err != nil {
		return nil, fmt.Errorf("check signature: %w", err)
	}
	if !signed {
		return &ForwardCheck{
			RequiresSignature: true,
			CanMark:           false,
			Reason:            "file requires e-signature before forwarding",
		}, nil
	}
	return &ForwardCheck{RequiresSignature: true, CanMark: true}, nil
}
