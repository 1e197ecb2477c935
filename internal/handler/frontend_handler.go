package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

// FrontendHandler serves the static client and falls back to index.html for
// client side routes. Unknown API paths get a JSON 404.
type FrontendHandler struct {
	dir       string
	apiPrefix string
	files     http.Handler
}

// NewFrontendHandler constructs the handler. An empty dir disables static
// hosting.
func NewFrontendHandler(dir, apiPrefix string) *FrontendHandler {
	h := &FrontendHandler{dir: dir, apiPrefix: strings.TrimRight(apiPrefix, "/")}
	if dir != "" {
		h.files = http.FileServer(http.Dir(dir))
	}
	return h
}

// NoRoute handles every request no API route matched.
func (h *FrontendHandler) NoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if h.files == nil || (h.apiPrefix != "" && (path == h.apiPrefix || strings.HasPrefix(path, h.apiPrefix+"/"))) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Route not found"))
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Route not found"))
		return
	}

	clean := filepath.Clean("/" + path)
	if info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
		h.files.ServeHTTP(c.Writer, c.Request)
		return
	}
	c.File(filepath.Join(h.dir, "index.html"))
}
