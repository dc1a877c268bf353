package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	"github.com/allisson/tokenauth/internal/auth/http/dto"
	authUseCase "github.com/allisson/tokenauth/internal/auth/usecase"
	"github.com/allisson/tokenauth/internal/httputil"
	customValidation "github.com/allisson/tokenauth/internal/validation"
)

// AuthHandler handles registration, login, logout and principal introspection.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	carrier     *TokenCarrier
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	authUseCase authUseCase.AuthUseCase,
	carrier *TokenCarrier,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		carrier:     carrier,
		logger:      logger,
	}
}

// RegisterHandler creates an identity and issues its first token.
// POST /api/v1/auth/register - Public.
// Returns 201 Created with token and expiration time, 409 Conflict for a taken email.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	issued, err := h.authUseCase.Register(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.carrier.Store(c, issued.Token, issued.ExpiresAt)
	c.JSON(http.StatusCreated, dto.MapIssuedTokenToResponse(issued))
}

// AuthenticateHandler verifies credentials and issues a token.
// POST /api/v1/auth/authenticate - Public.
// Returns 200 OK with token and expiration time. Unknown emails and wrong secrets both
// yield the same 401 response.
func (h *AuthHandler) AuthenticateHandler(c *gin.Context) {
	var req dto.AuthenticateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	issued, err := h.authUseCase.Login(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.carrier.Store(c, issued.Token, issued.ExpiresAt)
	c.JSON(http.StatusOK, dto.MapIssuedTokenToResponse(issued))
}

// LogoutHandler clears the client-held token.
// POST /logout - Public. Returns 204 No Content. Issued tokens remain valid until expiry.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	h.carrier.Clear(c)
	c.Status(http.StatusNoContent)
}

// MeHandler returns the principal of the current request.
// GET /api/v1/auth/me - Requires any authenticated principal.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrUnauthenticated, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPrincipalToResponse(principal))
}
