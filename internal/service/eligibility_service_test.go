package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/efile-routing-api/internal/models"
	"github.com/noah-isme/efile-routing-api/internal/repository"
)

type matrixStub struct {
	candidates []models.RecipientCandidate
	lastQuery  repository.MatrixQuery
	err        error
}

func (m *matrixStub) AllowedRecipients(_ context.Context, q repository.MatrixQuery) ([]models.RecipientCandidate, error) {
	m.lastQuery = q
	return m.candidates, m.err
}

type directoryStub struct {
	teams         map[string][]models.Person
	departmentSEs []models.Person
	divisionSEs   []models.Person
	err           error
}

func (d *directoryStub) TeamMembers(_ context.Context, personID string) ([]models.Person, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.teams[personID], nil
}

func (d *directoryStub) SuperintendentsByDepartment(_ context.Context, _, _ string) ([]models.Person, error) {
	return d.departmentSEs, d.err
}

func (d *directoryStub) SuperintendentsByDivision(_ context.Context, _, _ string) ([]models.Person, error) {
	return d.divisionSEs, d.err
}

type resolverStub struct {
	personLoc models.Geography
	fileLoc   models.Geography
}

func (r *resolverStub) ResolveLocation(_ context.Context, _ *models.Person) models.Geography {
	return r.personLoc
}

func (r *resolverStub) ResolveFileLocation(_ context.Context, _ *models.CaseFile) models.Geography {
	return r.fileLoc
}

func strPtr(s string) *string { return &s }

func activePerson(id, name, roleCode string) models.Person {
	return models.Person{ID: id, FullName: name, RoleCode: roleCode, Active: true}
}

func TestComputeEligibleRecipientsMergeOrder(t *testing.T) {
	matrix := &matrixStub{candidates: []models.RecipientCandidate{
		{PersonID: "p-se", DisplayName: "SE One", RoleCode: "SE", AllowedScope: models.ScopeDivision, Reason: models.ReasonMatrix},
	}}
	directory := &directoryStub{
		teams: map[string][]models.Person{
			"creator": {activePerson("p-se", "SE One", "SE"), activePerson("p-mate", "Mate", "JE")},
		},
		departmentSEs: []models.Person{activePerson("p-dept-se", "Dept SE", "SE")},
		divisionSEs:   []models.Person{activePerson("p-se", "SE One", "SE")},
	}
	resolver := &resolverStub{personLoc: models.Geography{DivisionID: strPtr("div-5")}}

	svc := NewEligibilityService(matrix, directory, resolver, nil)
	actor := models.Person{ID: "actor", DepartmentID: strPtr("dept-1"), Active: true}
	file := &models.CaseFile{ID: "file-1", FileType: "CURRENT", CreatedBy: "creator"}

	got, err := svc.ComputeEligibleRecipients(context.Background(), file, &actor)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// The matrix admitted p-se first, so the team and division sources
	// must not re-admit or rewrite it.
	first, ok := FindCandidate(got, "p-se")
	require.True(t, ok)
	assert.Equal(t, models.ReasonMatrix, first.Reason)
	assert.Equal(t, models.ScopeDivision, first.AllowedScope)

	mate, ok := FindCandidate(got, "p-mate")
	require.True(t, ok)
	assert.Equal(t, models.ReasonTeamMember, mate.Reason)
	assert.Equal(t, models.ScopeTeam, mate.AllowedScope)

	deptSE, ok := FindCandidate(got, "p-dept-se")
	require.True(t, ok)
	assert.Equal(t, models.ReasonDepartmentSE, deptSE.Reason)
}

func TestComputeEligibleRecipientsQueriesMatrixWithFileLocation(t *testing.T) {
	matrix := &matrixStub{}
	directory := &directoryStub{}
	resolver := &resolverStub{fileLoc: models.Geography{DistrictID: strPtr("d-1"), TownID: strPtr("t-2")}}

	svc := NewEligibilityService(matrix, directory, resolver, nil)
	actor := models.Person{ID: "actor", Active: true}
	file := &models.CaseFile{ID: "file-1", FileType: "PENSION", CreatedBy: "creator", DepartmentID: strPtr("dept-9")}

	_, err := svc.ComputeEligibleRecipients(context.Background(), file, &actor)
	require.NoError(t, err)

	assert.Equal(t, "PENSION", matrix.lastQuery.FileType)
	assert.Equal(t, "actor", matrix.lastQuery.ExcludePersonID)
	require.NotNil(t, matrix.lastQuery.DistrictID)
	assert.Equal(t, "d-1", *matrix.lastQuery.DistrictID)
	require.NotNil(t, matrix.lastQuery.TownID)
	assert.Equal(t, "t-2", *matrix.lastQuery.TownID)
}

func TestComputeEligibleRecipientsExcludesActorAndInactive(t *testing.T) {
	directory := &directoryStub{
		teams: map[string][]models.Person{
			"creator": {
				activePerson("actor", "Self", "JE"),
				{ID: "p-gone", FullName: "Gone", RoleCode: "JE", Active: false},
				activePerson("p-ok", "Ok", "JE"),
			},
		},
	}
	svc := NewEligibilityService(&matrixStub{}, directory, &resolverStub{}, nil)
	actor := models.Person{ID: "actor", Active: true}
	file := &models.CaseFile{ID: "file-1", CreatedBy: "creator"}

	got, err := svc.ComputeEligibleRecipients(context.Background(), file, &actor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p-ok", got[0].PersonID)
}

func TestComputeEligibleRecipientsSkipsActorTeamWhenActorIsCreator(t *testing.T) {
	directory := &directoryStub{
		teams: map[string][]models.Person{
			"actor": {activePerson("p-mate", "Mate", "JE")},
		},
	}
	svc := NewEligibilityService(&matrixStub{}, directory, &resolverStub{}, nil)
	actor := models.Person{ID: "actor", Active: true}
	file := &models.CaseFile{ID: "file-1", CreatedBy: "actor"}

	got, err := svc.ComputeEligibleRecipients(context.Background(), file, &actor)
	require.NoError(t, err)
	// Creator team and actor team are the same lookup; it must run once.
	require.Len(t, got, 1)
	assert.Equal(t, "p-mate", got[0].PersonID)
}

func TestComputeEligibleRecipientsMatrixError(t *testing.T) {
	matrix := &matrixStub{err: errors.New("boom")}
	svc := NewEligibilityService(matrix, &directoryStub{}, &resolverStub{}, nil)

	_, err := svc.ComputeEligibleRecipients(context.Background(), &models.CaseFile{ID: "f"}, &models.Person{ID: "a"})
	require.Error(t, err)
}

func TestMergeCandidatesFirstMatchWins(t *testing.T) {
	a := []models.RecipientCandidate{{PersonID: "x", Reason: models.ReasonMatrix}}
	b := []models.RecipientCandidate{{PersonID: "x", Reason: models.ReasonTeamMember}, {PersonID: "y", Reason: models.ReasonTeamMember}}

	merged := mergeCandidates(a, b)
	require.Len(t, merged, 2)
	assert.Equal(t, models.ReasonMatrix, merged[0].Reason)
	assert.Equal(t, "y", merged[1].PersonID)
}

func TestDisplayNameIncludesDesignation(t *testing.T) {
	p := models.Person{FullName: "A Kumar", Designation: "Junior Engineer"}
	assert.Equal(t, "A Kumar (Junior Engineer)", displayName(p))
	assert.Equal(t, "A Kumar", displayName(models.Person{FullName: "A Kumar"}))
}
