package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/allisson/tokenauth/internal/auth/http/dto"
	authUseCase "github.com/allisson/tokenauth/internal/auth/usecase"
	"github.com/allisson/tokenauth/internal/httputil"
	customValidation "github.com/allisson/tokenauth/internal/validation"
)

// IdentityHandler serves administrative identity lookups.
type IdentityHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// GetHandler retrieves an identity by email.
// GET /api/v1/admin/identities/:email - Requires ADMIN.
func (h *IdentityHandler) GetHandler(c *gin.Context) {
	email := c.Param("email")
	if err := validation.Validate(email, validation.Required, customValidation.Email); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	identity, err := h.authUseCase.GetIdentity(c.Request.Context(), email)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentityToResponse(identity))
}
