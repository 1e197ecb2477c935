package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

// userFromContext returns the authenticated user or writes a 401 and
// returns nil.
func userFromContext(c *gin.Context) *models.User {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Not authorized, no token provided"))
		return nil
	}
	return user
}
