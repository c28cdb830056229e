package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/internal/repository"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
)

// routingMatrixProvider is the getAllowedRecipients collaborator: the
// organizational role/geography routing matrix.
type routingMatrixProvider interface {
	AllowedRecipients(ctx context.Context, q repository.MatrixQuery) ([]models.RecipientCandidate, error)
}

type personDirectory interface {
	TeamMembers(ctx context.Context, personID string) ([]models.Person, error)
	SuperintendentsByDepartment(ctx context.Context, departmentID, excludePersonID string) ([]models.Person, error)
	SuperintendentsByDivision(ctx context.Context, divisionID, excludePersonID string) ([]models.Person, error)
}

type locationResolver interface {
	ResolveLocation(ctx context.Context, person *models.Person) models.Geography
	ResolveFileLocation(ctx context.Context, file *models.CaseFile) models.Geography
}

// EligibilityService computes the full legal recipient set for a file and
// acting person. Results are transient and recomputed per request.
type EligibilityService struct {
	matrix    routingMatrixProvider
	persons   personDirectory
	geography locationResolver
	logger    *zap.Logger
}

// NewEligibilityService wires the engine.
func NewEligibilityService(matrix routingMatrixProvider, persons personDirectory, geography locationResolver, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{matrix: matrix, persons: persons, geography: geography, logger: logger}
}

// ComputeEligibleRecipients merges the independent candidate sources in a
// fixed order: routing matrix, creator's team, actor's team, department
// superintendents, division superintendents. The first source to admit a
// person wins; later duplicates are dropped.
func (s *EligibilityService) ComputeEligibleRecipients(ctx context.Context, file *models.CaseFile, actor *models.Person) ([]models.RecipientCandidate, error) {
	fileLoc := s.geography.ResolveFileLocation(ctx, file)

	matrixCandidates, err := s.matrix.AllowedRecipients(ctx, repository.MatrixQuery{
		FileType:        file.FileType,
		ExcludePersonID: actor.ID,
		DepartmentID:    file.DepartmentID,
		DistrictID:      fileLoc.DistrictID,
		TownID:          fileLoc.TownID,
		DivisionID:      fileLoc.DivisionID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query routing matrix")
	}

	creatorTeam, err := s.persons.TeamMembers(ctx, file.CreatedBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list creator team")
	}

	var actorTeam []models.Person
	if actor.ID != file.CreatedBy {
		actorTeam, err = s.persons.TeamMembers(ctx, actor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list actor team")
		}
	}

	var departmentSEs []models.Person
	if actor.DepartmentID != nil {
		departmentSEs, err = s.persons.SuperintendentsByDepartment(ctx, *actor.DepartmentID, actor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department superintendents")
		}
	}

	var divisionSEs []models.Person
	actorLoc := s.geography.ResolveLocation(ctx, actor)
	if actorLoc.DivisionID != nil {
		divisionSEs, err = s.persons.SuperintendentsByDivision(ctx, *actorLoc.DivisionID, actor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list division superintendents")
		}
	}

	merged := mergeCandidates(
		matrixCandidates,
		personsAsCandidates(creatorTeam, models.ScopeTeam, models.ReasonTeamMember, actor.ID),
		personsAsCandidates(actorTeam, models.ScopeTeam, models.ReasonTeamMember, actor.ID),
		personsAsCandidates(departmentSEs, models.ScopeDepartment, models.ReasonDepartmentSE, actor.ID),
		personsAsCandidates(divisionSEs, models.ScopeDivision, models.ReasonDivisionSE, actor.ID),
	)
	s.logger.Debug("computed eligible recipients",
		zap.String("file_id", file.ID),
		zap.String("actor_id", actor.ID),
		zap.Int("count", len(merged)))
	return merged, nil
}

// FindCandidate returns the candidate entry admitting personID, if any.
func FindCandidate(candidates []models.RecipientCandidate, personID string) (models.RecipientCandidate, bool) {
	for _, c := range candidates {
		if c.PersonID == personID {
			return c, true
		}
	}
	return models.RecipientCandidate{}, false
}

// mergeCandidates is a pure ordered reducer with set semantics keyed by
// person id: the first occurrence of a person fixes their scope and
// reason, later sources never override it.
func mergeCandidates(sources ...[]models.RecipientCandidate) []models.RecipientCandidate {
	seen := make(map[string]struct{})
	var merged []models.RecipientCandidate
	for _, source := range sources {
		for _, candidate := range source {
			if candidate.PersonID == "" {
				continue
			}
			if _, ok := seen[candidate.PersonID]; ok {
				continue
			}
			seen[candidate.PersonID] = struct{}{}
			merged = append(merged, candidate)
		}
	}
	return merged
}

func personsAsCandidates(persons []models.Person, scope models.RoutingScope, reason models.AllowedReason, excludeID string) []models.RecipientCandidate {
	candidates := make([]models.RecipientCandidate, 0, len(persons))
	for _, p := range persons {
		if p.ID == excludeID || !p.Active {
			continue
		}
		candidates = append(candidates, models.RecipientCandidate{
			PersonID:     p.ID,
			DisplayName:  displayName(p),
			RoleCode:     p.RoleCode,
			AllowedScope: scope,
			Reason:       reason,
		})
	}
	return candidates
}

func displayName(p models.Person) string {
	if p.Designation == "" {
		return p.FullName
	}
	return fmt.Sprintf("%s (%s)", p.FullName, p.Designation)
}
