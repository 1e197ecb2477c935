package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(header string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, Value(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(headerKey, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareKeepsClientID(t *testing.T) {
	w := serve("abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(headerKey))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestMiddlewareReplacesInvalidID(t *testing.T) {
	w := serve(strings.Repeat("x", 100))
	got := w.Header().Get(headerKey)
	assert.Len(t, got, 36)
	assert.Equal(t, got, w.Body.String())
}
