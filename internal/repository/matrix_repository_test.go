package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/efile-routing-api/internal/models"
)

func TestMatrixRepositoryAllowedRecipients(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMatrixRepository(db)

	deptID := "dept-1"
	rows := sqlmock.NewRows([]string{"person_id", "display_name", "role_code", "scope"}).
		AddRow("p-se", "S Devi", "SE", "district").
		AddRow("p-cfo", "R Iyer", "CFO", "global")

	mock.ExpectQuery(regexp.QuoteMeta("FROM routing_matrix m")).
		WithArgs("PENSION", "actor", "dept-1", nil, nil, nil).
		WillReturnRows(rows)

	candidates, err := repo.AllowedRecipients(context.Background(), MatrixQuery{
		FileType:        "PENSION",
		ExcludePersonID: "actor",
		DepartmentID:    &deptID,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, models.ReasonMatrix, candidates[0].Reason)
	assert.Equal(t, models.ScopeDistrict, candidates[0].AllowedScope)
	assert.Equal(t, models.ScopeGlobal, candidates[1].AllowedScope)
}

func TestMatrixRepositoryAllowedRecipientsEmpty(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMatrixRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM routing_matrix m")).
		WillReturnRows(sqlmock.NewRows([]string{"person_id", "display_name", "role_code", "scope"}))

	candidates, err := repo.AllowedRecipients(context.Background(), MatrixQuery{FileType: "LEAVE", ExcludePersonID: "actor"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
