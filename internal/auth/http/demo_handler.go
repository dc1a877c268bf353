package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/tokenauth/internal/auth/http/dto"
)

// DemoHandler serves the sample resources guarded by the default route policy.
type DemoHandler struct{}

// NewDemoHandler creates a new demo handler.
func NewDemoHandler() *DemoHandler {
	return &DemoHandler{}
}

// GreetingHandler handles GET /api/v1/greeting-controller (public).
func (h *DemoHandler) GreetingHandler(c *gin.Context) {
	h.respond(c, "hello")
}

// DemoHandler handles GET /api/v1/demo-controller (public).
func (h *DemoHandler) DemoHandler(c *gin.Context) {
	h.respond(c, "demo without authentication")
}

// WithAuthHandler handles GET /api/v1/demo-controller/with-auth (USER).
func (h *DemoHandler) WithAuthHandler(c *gin.Context) {
	h.respond(c, "demo with authentication")
}

// IndexHandler handles GET /api/v1/index-controller/index (USER).
func (h *DemoHandler) IndexHandler(c *gin.Context) {
	h.respond(c, "index")
}

func (h *DemoHandler) respond(c *gin.Context, message string) {
	response := dto.MessageResponse{Message: message}
	if principal, ok := GetPrincipal(c.Request.Context()); ok {
		response.Subject = principal.Subject
	}
	c.JSON(http.StatusOK, response)
}
