package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

type roleLocationReader interface {
	GetByRoleID(ctx context.Context, roleID string) (*models.RoleLocation, error)
}

type creatorReader interface {
	FindByID(ctx context.Context, id string) (*models.Person, error)
}

// GeographyService resolves effective locations: personal fields first,
// the role's default location as fallback. Lookup failures are soft; the
// affected field simply stays unresolved.
type GeographyService struct {
	roleLocations roleLocationReader
	persons       creatorReader
	logger        *zap.Logger
}

// NewGeographyService wires the resolver.
func NewGeographyService(roleLocations roleLocationReader, persons creatorReader, logger *zap.Logger) *GeographyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeographyService{roleLocations: roleLocations, persons: persons, logger: logger}
}

// ResolveLocation returns the person's effective location. Personal values
// are never overwritten; only nil fields are filled from the role's
// default location row. Calling it twice on an unchanged person yields the
// same result.
func (s *GeographyService) ResolveLocation(ctx context.Context, person *models.Person) models.Geography {
	geo := person.PersonalGeography()
	if geo.Complete() {
		return geo
	}

	roleLoc, err := s.roleLocations.GetByRoleID(ctx, person.RoleID)
	if err != nil {
		s.logger.Warn("role location lookup failed, continuing without fallback",
			zap.String("person_id", person.ID),
			zap.String("role_id", person.RoleID),
			zap.Error(err))
		return geo
	}
	if roleLoc == nil {
		return geo
	}

	if geo.DistrictID == nil {
		geo.DistrictID = roleLoc.DistrictID
	}
	if geo.TownID == nil {
		geo.TownID = roleLoc.TownID
	}
	if geo.DivisionID == nil {
		geo.DivisionID = roleLoc.DivisionID
	}
	return geo
}

// ResolveFileLocation returns the file's routing location. File columns
// win; when the file carries no geography at all, the creator's resolved
// location serves as a last-resort proxy.
func (s *GeographyService) ResolveFileLocation(ctx context.Context, file *models.CaseFile) models.Geography {
	geo := file.Geography()
	if geo.DistrictID != nil || geo.TownID != nil || geo.DivisionID != nil {
		return geo
	}

	creator, err := s.persons.FindByID(ctx, file.CreatedBy)
	if err != nil {
		s.logger.Warn("file creator lookup failed, file location unresolved",
			zap.String("file_id", file.ID),
			zap.String("created_by", file.CreatedBy),
			zap.Error(err))
		return geo
	}
	return s.ResolveLocation(ctx, creator)
}

// RoleDivision returns the division carried by a role's default location,
// independent of any personal assignment. Nil when the role has none or
// the lookup fails.
func (s *GeographyService) RoleDivision(ctx context.Context, roleID string) *string {
	roleLoc, err := s.roleLocations.GetByRoleID(ctx, roleID)
	if err != nil {
		s.logger.Warn("role division lookup failed", zap.String("role_id", roleID), zap.Error(err))
		return nil
	}
	if roleLoc == nil {
		return nil
	}
	return roleLoc.DivisionID
}
