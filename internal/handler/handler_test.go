package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/models"
)

type responseEnvelope struct {
	Message string `json:"message"`
	Error   *struct {
		Code   string `json:"code"`
		Status int    `json:"status"`
	} `json:"error"`
}

var (
	teacherUser = &models.User{ID: "9b2e0f0e-2f55-4c8a-9d0e-5d4c1b7a0001", Name: "Tom", Email: "tom@example.com", Role: models.RoleTeacher}
	studentUser = &models.User{ID: "9b2e0f0e-2f55-4c8a-9d0e-5d4c1b7a0002", Name: "Ana", Email: "ana@example.com", Role: models.RoleStudent,
		Student: &models.StudentProfile{StudentID: "S-1"}}
)

func newTestContext(user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if user != nil {
		c.Set(middleware.ContextUserKey, user)
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
