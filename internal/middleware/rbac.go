package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. It must run
// after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	denied := appErrors.Clone(appErrors.ErrForbidden, "Access denied.")
	if len(roles) == 1 {
		switch roles[0] {
		case models.RoleTeacher:
			denied = appErrors.Clone(appErrors.ErrForbidden, "Access denied. Teachers only.")
		case models.RoleStudent:
			denied = appErrors.Clone(appErrors.ErrForbidden, "Access denied. Students only.")
		}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "Not authorized, no token provided"))
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.Abort(c, denied)
			return
		}
		c.Next()
	}
}
