package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/notehub/internal/auth/http/dto"
	authUsecase "github.com/allisson/notehub/internal/auth/usecase"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/httputil"
	customValidation "github.com/allisson/notehub/internal/validation"
)

// AuthHandler handles HTTP requests for the authentication flows: login,
// second factor verification, password reset, registration and invitations.
type AuthHandler struct {
	authUseCase authUsecase.UseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authUseCase authUsecase.UseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// LoginHandler authenticates a handle/password pair.
// POST /v1/auth/login - IP rate limited.
// Returns 200 OK with either an authenticated session token or a pending
// token when a second factor is required.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.authUseCase.Login(c.Request.Context(), req.Handle, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLoginOutputToResponse(output))
}

// VerifySecondFactorHandler completes a pending login with a one-time code.
// POST /v1/auth/verify-2fa.
// Returns 200 OK with a fresh authenticated session token.
func (h *AuthHandler) VerifySecondFactorHandler(c *gin.Context) {
	var req dto.VerifySecondFactorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.authUseCase.VerifySecondFactor(c.Request.Context(), req.SessionToken, req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLoginOutputToResponse(output))
}

// LogoutHandler destroys the caller's session.
// POST /v1/auth/logout - Requires an authenticated session.
// Returns 204 No Content, also when the session was already gone.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	plainToken, ok := BearerToken(c)
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), plainToken); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ForgotPasswordHandler starts the password reset flow.
// POST /v1/auth/forgot-password - IP rate limited.
// Returns 200 OK with the same issued-shape response whether or not the
// handle exists.
func (h *AuthHandler) ForgotPasswordHandler(c *gin.Context) {
	var req dto.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.authUseCase.RequestPasswordReset(c.Request.Context(), req.Handle)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// The token is delivered out of band; the response stays generic so
	// handles cannot be enumerated.
	if output.ResetToken != "" {
		h.logger.InfoContext(c.Request.Context(), "password reset token issued",
			slog.String("handle", req.Handle),
			slog.String("reset_token", output.ResetToken),
		)
	}

	c.JSON(http.StatusOK, dto.MapResetRequestToResponse(output))
}

// VerifyResetSecondFactorHandler completes the reset second factor gate.
// POST /v1/auth/verify-2fa-reset.
// Returns 200 OK once the reset token has been issued for delivery.
func (h *AuthHandler) VerifyResetSecondFactorHandler(c *gin.Context) {
	var req dto.VerifySecondFactorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.authUseCase.VerifyResetSecondFactor(c.Request.Context(), req.SessionToken, req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if output.ResetToken != "" {
		h.logger.InfoContext(c.Request.Context(), "password reset token issued",
			slog.String("reset_token", output.ResetToken),
		)
	}

	c.JSON(http.StatusOK, dto.MapResetRequestToResponse(output))
}

// ResetPasswordHandler redeems a reset token and replaces the password.
// POST /v1/auth/reset-password.
// Returns 204 No Content; every session of the identity is revoked.
func (h *AuthHandler) ResetPasswordHandler(c *gin.Context) {
	var req dto.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.authUseCase.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterHandler creates a new account, optionally redeeming an invite.
// POST /v1/auth/register.
// Returns 201 Created with an authenticated session token.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.authUseCase.Register(c.Request.Context(), authUsecase.RegisterInput{
		Handle:      req.Handle,
		Password:    req.Password,
		Email:       req.Email,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapLoginOutputToResponse(output))
}

// CreateInvitationHandler issues an invite token on behalf of the caller.
// POST /v1/invitations - Requires an authenticated session.
// Returns 201 Created with the plaintext token, surfaced exactly once.
func (h *AuthHandler) CreateInvitationHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateInvitationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	invitation, err := h.authUseCase.CreateInvitation(c.Request.Context(), identity.ID, authUsecase.InvitationInput{
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapInvitationToResponse(invitation))
}

// ListInvitationsHandler retrieves the caller's invitations, newest first.
// GET /v1/invitations - Requires an authenticated session.
// Returns 200 OK with a paginated list.
func (h *AuthHandler) ListInvitationsHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	tokens, err := h.authUseCase.ListInvitations(c.Request.Context(), identity.ID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	invitations := make([]dto.InvitationResponse, 0, len(tokens))
	for _, token := range tokens {
		invitations = append(invitations, dto.MapTokenToInvitationResponse(token))
	}

	c.JSON(http.StatusOK, dto.ListInvitationsResponse{
		Invitations: invitations,
		Offset:      offset,
		Limit:       limit,
	})
}
