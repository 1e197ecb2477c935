package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

// Envelope is the failure body. Message is always set so that clients can
// render it directly.
type Envelope struct {
	Message string           `json:"message"`
	Error   *appErrors.Error `json:"error,omitempty"`
}

// Raw sends a success body as is.
func Raw(c *gin.Context, status int, body interface{}) {
	noStore(c)
	c.JSON(status, body)
}

// OK responds with HTTP 200 and the body as is.
func OK(c *gin.Context, body interface{}) {
	Raw(c, http.StatusOK, body)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, body interface{}) {
	Raw(c, http.StatusCreated, body)
}

// Error sends an error response converting the error to the common structure.
// Wrapped causes are attached to the gin context for the access log and never
// serialised.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	noStore(c)
	c.JSON(appErr.Status, Envelope{Message: appErr.Message, Error: appErr})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
