package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

func TestMovementRepositoryInsertFillsIdentity(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMovementRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movements")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	movement := &models.Movement{
		FileID:       "file-1",
		FromPersonID: "actor",
		ToPersonID:   "target",
		ActionType:   models.ActionMarkTo,
		FromName:     "A Kumar",
		ToName:       "S Devi",
	}
	require.NoError(t, repo.Insert(context.Background(), db, movement))
	assert.NotEmpty(t, movement.ID)
	assert.False(t, movement.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryListByFile(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMovementRepository(db)

	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "file_id", "from_person_id", "to_person_id", "from_department_id", "to_department_id",
		"action_type", "remarks", "is_team_internal", "is_return_to_creator", "tat_started",
		"from_name", "from_designation", "from_town_id", "from_division_id",
		"to_name", "to_designation", "to_town_id", "to_division_id", "created_at",
	}).AddRow("m-1", "file-1", "actor", "target", nil, nil,
		"MARK_TO", "please review", false, false, true,
		"A Kumar", "Junior Engineer", nil, nil,
		"S Devi", "Superintendent Engineer", nil, "div-5", created)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC")).
		WithArgs("file-1").
		WillReturnRows(rows)

	movements, err := repo.ListByFile(context.Background(), models.MovementFilter{FileID: "file-1"})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.ActionMarkTo, movements[0].ActionType)
	assert.True(t, movements[0].TatStarted)
	require.NotNil(t, movements[0].ToDivisionID)
	assert.Equal(t, "div-5", *movements[0].ToDivisionID)
}

func TestMovementRepositoryListByFileCapsLimit(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMovementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 200 OFFSET 0")).
		WithArgs("file-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ListByFile(context.Background(), models.MovementFilter{FileID: "file-1", Limit: 9999})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryCountByFile(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMovementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movements WHERE file_id = $1")).
		WithArgs("file-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByFile(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
