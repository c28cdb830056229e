package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/efile-routing-api/internal/models"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
)

type roleDivisionStub struct {
	divisions map[string]*string
}

func (s *roleDivisionStub) RoleDivision(_ context.Context, roleID string) *string {
	return s.divisions[roleID]
}

func TestGeoValidateSkipsExemptActor(t *testing.T) {
	v := NewGeoValidator(&roleDivisionStub{})
	err := v.Validate(context.Background(), GeoValidationInput{
		Scope:         models.ScopeDistrict,
		ActorRoleCode: "CEO",
	})
	assert.NoError(t, err)

	err = v.Validate(context.Background(), GeoValidationInput{
		Scope:         models.ScopeDistrict,
		ActorRoleCode: "COO",
	})
	assert.NoError(t, err)
}

func TestGeoValidateSkipsTeamInternal(t *testing.T) {
	v := NewGeoValidator(&roleDivisionStub{})
	err := v.Validate(context.Background(), GeoValidationInput{
		Scope:        models.ScopeTown,
		TeamInternal: true,
	})
	assert.NoError(t, err)
}

func TestGeoValidateSkipsOrganizationalScopes(t *testing.T) {
	v := NewGeoValidator(&roleDivisionStub{})
	for _, scope := range []models.RoutingScope{models.ScopeTeam, models.ScopeDepartment, models.ScopeGlobal} {
		err := v.Validate(context.Background(), GeoValidationInput{Scope: scope})
		assert.NoError(t, err, string(scope))
	}
}

func TestGeoValidateDistrictMatch(t *testing.T) {
	v := NewGeoValidator(&roleDivisionStub{})

	err := v.Validate(context.Background(), GeoValidationInput{
		Scope:          models.ScopeDistrict,
		FileLocation:   models.Geography{DistrictID: strPtr("d-1")},
		TargetLocation: models.Geography{DistrictID: strPtr("d-1")},
	})
	assert.NoError(t, err)

	err = v.Validate(context.Background(), GeoValidationInput{
		Scope:          models.ScopeDistrict,
		FileLocation:   models.Geography{DistrictID: strPtr("d-1")},
		TargetLocation: models.Geography{DistrictID: strPtr("d-2")},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "GEO_MISMATCH", appErr.Code)
	assert.Equal(t, "Geographic mismatch: required scope district", appErr.Message)
}

func TestGeoValidateNilFieldFails(t *testing.T) {
	v := NewGeoValidator(&roleDivisionStub{})
	err := v.Validate(context.Background(), GeoValidationInput{
		Scope:          models.ScopeTown,
		FileLocation:   models.Geography{TownID: strPtr("t-1")},
		TargetLocation: models.Geography{},
	})
	require.Error(t, err)
	assert.Equal(t, "GEO_MISMATCH", appErrors.FromError(err).Code)
}

func TestGeoValidateDivisionRoleOverride(t *testing.T) {
	// Neither party carries personal division geography, but both roles
	// default to the same division.
	v := NewGeoValidator(&roleDivisionStub{divisions: map[string]*string{
		"role-actor":  strPtr("div-5"),
		"role-target": strPtr("div-5"),
	}})

	err := v.Validate(context.Background(), GeoValidationInput{
		Scope:        models.ScopeDivision,
		ActorRoleID:  "role-actor",
		TargetRoleID: "role-target",
	})
	assert.NoError(t, err)
}

func TestGeoValidateDivisionRoleOverrideMiss(t *testing.T) {
	v := NewGeoValidator(&roleDivisionStub{divisions: map[string]*string{
		"role-actor":  strPtr("div-5"),
		"role-target": strPtr("div-6"),
	}})

	err := v.Validate(context.Background(), GeoValidationInput{
		Scope:          models.ScopeDivision,
		ActorRoleID:    "role-actor",
		TargetRoleID:   "role-target",
		FileLocation:   models.Geography{DivisionID: strPtr("div-5")},
		TargetLocation: models.Geography{DivisionID: strPtr("div-6")},
	})
	require.Error(t, err)
	assert.Equal(t, "Geographic mismatch: required scope division", appErrors.FromError(err).Message)
}

func TestGeoValidateDivisionFieldFallback(t *testing.T) {
	// Role override misses, plain field comparison still passes.
	v := NewGeoValidator(&roleDivisionStub{})
	err := v.Validate(context.Background(), GeoValidationInput{
		Scope:          models.ScopeDivision,
		FileLocation:   models.Geography{DivisionID: strPtr("div-9")},
		TargetLocation: models.Geography{DivisionID: strPtr("div-9")},
	})
	assert.NoError(t, err)
}
