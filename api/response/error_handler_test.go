package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backoffice/domain/sale"
	"backoffice/domain/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/sales/1", nil)
	c.Set(RequestIDKey, "req-1")
	handler(c)

	var body Response
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func TestHandleAppError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"validation", sale.NewSalePaidError("This sale is already paid for and cannot be edited"), http.StatusBadRequest, "VALIDATION_ERROR", "This sale is already paid for and cannot be edited"},
		{"unauthenticated", shared.NewUnauthenticatedError("Expired access token"), http.StatusUnauthorized, "UNAUTHORIZED", "Expired access token"},
		{"forbidden", sale.NewNotAssigneeError(), http.StatusForbidden, "FORBIDDEN", "You are not the staff assigned to this order"},
		{"not found", sale.NewSaleNotFoundError(), http.StatusNotFound, "NOT_FOUND", "This Sale does not exist"},
		{"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := record(func(c *gin.Context) { HandleAppError(c, tt.err) })

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, body.Status)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestHandleBindError(t *testing.T) {
	UseJSONFieldNames()

	type payload struct {
		Location string `json:"location" binding:"required"`
		Orders   []int  `json:"orders" binding:"required,min=1"`
	}

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	var p payload
	err := c.ShouldBindJSON(&p)
	require.Error(t, err)

	assert.Equal(t, "Invalid request body", bindMessage(err))

	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"orders": []}`))
	verr := c.ShouldBindJSON(&p)
	require.Error(t, verr)
	assert.Equal(t, "location is required; orders must have at least 1 item(s)", bindMessage(verr))

	HandleBindError(c, verr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSuccess(t *testing.T) {
	rec, body := record(func(c *gin.Context) { HandleCreated(c, gin.H{"id": 1}, "Sale created successfully") })

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Status)
	assert.Equal(t, "Sale created successfully", body.Message)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, body.Data)
}
