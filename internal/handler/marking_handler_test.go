package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/efile-routing-api/internal/dto"
	"github.com/noah-isme/efile-routing-api/internal/middleware"
	"github.com/noah-isme/efile-routing-api/internal/models"
	appErrors "github.com/noah-isme/efile-routing-api/pkg/errors"
	"github.com/noah-isme/efile-routing-api/pkg/response"
)

type markingServiceMock struct {
	recipientsResp *dto.RecipientListResponse
	recipientsErr  error
	markResp       *dto.MarkFileResponse
	markErr        error
	lastFileID     string
	lastClaims     *models.JWTClaims
	lastReq        dto.MarkFileRequest
	markCalled     bool
}

func (m *markingServiceMock) ListRecipients(ctx context.Context, fileID string, claims *models.JWTClaims) (*dto.RecipientListResponse, error) {
	m.lastFileID = fileID
	m.lastClaims = claims
	return m.recipientsResp, m.recipientsErr
}

func (m *markingServiceMock) MarkFile(ctx context.Context, fileID string, claims *models.JWTClaims, req dto.MarkFileRequest) (*dto.MarkFileResponse, error) {
	m.markCalled = true
	m.lastFileID = fileID
	m.lastClaims = claims
	m.lastReq = req
	return m.markResp, m.markErr
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestMarkingHandlerRecipients(t *testing.T) {
	mockSvc := &markingServiceMock{
		recipientsResp: &dto.RecipientListResponse{
			FileID: "file-1",
			Recipients: []models.RecipientCandidate{
				{PersonID: "p-se", RoleCode: "SE", AllowedScope: models.ScopeDivision},
			},
		},
	}
	handler := NewMarkingHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/files/file-1/recipients", nil)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	handler.Recipients(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "file-1", mockSvc.lastFileID)
	require.NotNil(t, mockSvc.lastClaims)
	assert.Equal(t, "user-1", mockSvc.lastClaims.UserID)

	envelope := decodeEnvelope(t, w)
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}

func TestMarkingHandlerRecipientsMissingClaims(t *testing.T) {
	mockSvc := &markingServiceMock{recipientsErr: appErrors.ErrUnauthorized}
	handler := NewMarkingHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/files/file-1/recipients", nil)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}

	handler.Recipients(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, mockSvc.lastClaims, "claims absent from context must reach the service as nil")
}

func TestMarkingHandlerMark(t *testing.T) {
	mockSvc := &markingServiceMock{
		markResp: &dto.MarkFileResponse{State: models.StateExternal, TatStarted: true},
	}
	handler := NewMarkingHandler(mockSvc)

	payload, _ := json.Marshal(dto.MarkFileRequest{TargetPersonIDs: []string{"target"}, Remarks: "please review"})
	c, w := testContext(t, http.MethodPost, "/files/file-1/mark", payload)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	handler.Mark(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.markCalled)
	assert.Equal(t, "file-1", mockSvc.lastFileID)
	assert.Equal(t, []string{"target"}, mockSvc.lastReq.TargetPersonIDs)

	envelope := decodeEnvelope(t, w)
	assert.Nil(t, envelope.Error)
}

func TestMarkingHandlerMarkInvalidBody(t *testing.T) {
	mockSvc := &markingServiceMock{}
	handler := NewMarkingHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/files/file-1/mark", []byte(`{"target_person_ids":`))
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	handler.Mark(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.markCalled)
}

func TestMarkingHandlerMarkNotEligible(t *testing.T) {
	mockSvc := &markingServiceMock{markErr: appErrors.ErrNotEligible}
	handler := NewMarkingHandler(mockSvc)

	payload, _ := json.Marshal(dto.MarkFileRequest{TargetPersonIDs: []string{"outsider"}})
	c, w := testContext(t, http.MethodPost, "/files/file-1/mark", payload)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	handler.Mark(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "RECIPIENT_NOT_ELIGIBLE", envelope.Error.Code)
	assert.Equal(t, "Selected user is not allowed based on SLA matrix/location rules", envelope.Error.Message)
}

func TestMarkingHandlerMarkGeoMismatch(t *testing.T) {
	mockSvc := &markingServiceMock{markErr: appErrors.GeoMismatch("district")}
	handler := NewMarkingHandler(mockSvc)

	payload, _ := json.Marshal(dto.MarkFileRequest{TargetPersonIDs: []string{"target"}})
	c, w := testContext(t, http.MethodPost, "/files/file-1/mark", payload)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	handler.Mark(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "GEO_MISMATCH", envelope.Error.Code)
	assert.Equal(t, "Geographic mismatch: required scope district", envelope.Error.Message)
}

func TestMarkingHandlerMarkSignatureRequired(t *testing.T) {
	mockSvc := &markingServiceMock{markErr: appErrors.ErrSignatureRequired}
	handler := NewMarkingHandler(mockSvc)

	payload, _ := json.Marshal(dto.MarkFileRequest{TargetPersonIDs: []string{"target"}})
	c, w := testContext(t, http.MethodPost, "/files/file-1/mark", payload)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleEfilingUser})

	handler.Mark(c)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SIGNATURE_REQUIRED", envelope.Error.Code)
}
