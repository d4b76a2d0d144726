package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindTarget struct {
	JobNumber   string `json:"job_number" binding:"required"`
	HoursWorked int    `json:"hours_worked" binding:"gt=0,lte=24"`
	Role        string `json:"role" binding:"omitempty,oneof=operator admin"`
}

func bind(t *testing.T, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var target bindTarget
	err := c.ShouldBindJSON(&target)
	if err != nil {
		BindingError(c, err)
	}
	return w, err
}

func TestBindingError_FieldDetails(t *testing.T) {
	w, err := bind(t, `{"hours_worked": 30, "role": "guest"}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code    string       `json:"code"`
		Details []FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeInvalidInput, resp.Code)

	byField := map[string]string{}
	for _, d := range resp.Details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "is required", byField["job_number"])
	assert.Equal(t, "must be at most 24", byField["hours_worked"])
	assert.Equal(t, "must be one of: operator admin", byField["role"])
}

func TestBindingError_MalformedJSON(t *testing.T) {
	w, err := bind(t, `{"job_number":`)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "details")
}

func TestResponders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		respond func(*gin.Context)
		status  int
		code    string
	}{
		{func(c *gin.Context) { PayloadTooLarge(c, "") }, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge},
		{func(c *gin.Context) { AccountDisabled(c) }, http.StatusForbidden, ErrCodeAccountDisabled},
		{func(c *gin.Context) { InvalidCredentials(c, "") }, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{func(c *gin.Context) { Conflict(c, "Username already taken") }, http.StatusConflict, ErrCodeConflict},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		tt.respond(c)
		assert.Equal(t, tt.status, w.Code)

		var apiErr APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, tt.code, apiErr.Code)
		assert.NotEmpty(t, apiErr.Message)
	}
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "job_number", toSnake("JobNumber"))
	assert.Equal(t, "id", toSnake("id"))
	assert.Equal(t, "user_id", toSnake("UserID"))
}
