package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, caller *models.User) ([]models.UserProfile, error)
}

// StudentHandler exposes the student roster.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Description Every registered student ordered by name
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserProfile
// @Failure 403 {object} response.Envelope
// @Router /attendance/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		return
	}
	students, err := h.service.List(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}
