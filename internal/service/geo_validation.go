package service

import (
	"context"

	"github.com/noah-isme/efile-routing-api/internal/models"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
)

type roleDivisionReader interface {
	RoleDivision(ctx context.Context, roleID string) *string
}

// GeoValidator checks that a marking target sits inside the geographic
// scope the eligibility rule demands.
type GeoValidator struct {
	roles roleDivisionReader
}

// NewGeoValidator wires the validator.
func NewGeoValidator(roles roleDivisionReader) *GeoValidator {
	return &GeoValidator{roles: roles}
}

// GeoValidationInput carries everything a single validation needs.
type GeoValidationInput struct {
	FileLocation   models.Geography
	TargetLocation models.Geography
	Scope          models.RoutingScope
	ActorRoleCode  string
	ActorRoleID    string
	TargetRoleID   string
	TeamInternal   bool
}

// Validate returns nil when the move is geographically admissible.
//
// Skipped entirely for CEO/COO actors, team-internal moves, and
// organizational scopes. Division scope first allows a shared division
// between the two roles' default locations, covering roles whose personal
// geography is unset.
func (v *GeoValidator) Validate(ctx context.Context, in GeoValidationInput) error {
	if models.IsGeoExemptRoleCode(in.ActorRoleCode) || in.TeamInternal {
		return nil
	}
	if !in.Scope.Geographic() {
		return nil
	}

	if in.Scope == models.ScopeDivision && v.roles != nil {
		actorDiv := v.roles.RoleDivision(ctx, in.ActorRoleID)
		targetDiv := v.roles.RoleDivision(ctx, in.TargetRoleID)
		if actorDiv != nil && targetDiv != nil && *actorDiv == *targetDiv {
			return nil
		}
	}

	var fileField, targetField *string
	switch in.Scope {
	case models.ScopeDistrict:
		fileField, targetField = in.FileLocation.DistrictID, in.TargetLocation.DistrictID
	case models.ScopeTown:
		fileField, targetField = in.FileLocation.TownID, in.TargetLocation.TownID
	case models.ScopeDivision:
		fileField, targetField = in.FileLocation.DivisionID, in.TargetLocation.DivisionID
	}

	if fileField == nil || targetField == nil || *fileField != *targetField {
		return appErrors.GeoMismatch(string(in.Scope))
	}
	return nil
}
