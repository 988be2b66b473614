// Package http provides HTTP handlers for profile and second factor
// management.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/notehub/internal/auth/http"
	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/httputil"
	"github.com/allisson/notehub/internal/identity/http/dto"
	identityUsecase "github.com/allisson/notehub/internal/identity/usecase"
	customValidation "github.com/allisson/notehub/internal/validation"
)

// ProfileHandler handles HTTP requests for the caller's own profile, theme
// preference and second factor lifecycle.
type ProfileHandler struct {
	identityUseCase identityUsecase.UseCase
	logger          *slog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(identityUseCase identityUsecase.UseCase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		identityUseCase: identityUseCase,
		logger:          logger,
	}
}

// GetHandler retrieves the caller's profile.
// GET /v1/profile - Requires an authenticated session.
func (h *ProfileHandler) GetHandler(c *gin.Context) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentityToProfileResponse(identity))
}

// UpdateHandler modifies the caller's handle, bio and email. A taken handle
// surfaces as 409 Conflict.
// PUT /v1/profile - Requires an authenticated session.
func (h *ProfileHandler) UpdateHandler(c *gin.Context) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.UpdateProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	updated, err := h.identityUseCase.UpdateProfile(c.Request.Context(), identity.ID, identityUsecase.UpdateProfileInput{
		Handle: req.Handle,
		Bio:    req.Bio,
		Email:  req.Email,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentityToProfileResponse(updated))
}

// ToggleThemeHandler flips the caller's theme preference.
// POST /v1/profile/theme - Requires an authenticated session.
func (h *ProfileHandler) ToggleThemeHandler(c *gin.Context) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	updated, err := h.identityUseCase.ToggleTheme(c.Request.Context(), identity.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentityToProfileResponse(updated))
}

// StatsHandler aggregates the caller's dashboard counters.
// GET /v1/profile/stats - Requires an authenticated session.
func (h *ProfileHandler) StatsHandler(c *gin.Context) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	stats, err := h.identityUseCase.GetStats(c.Request.Context(), identity.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatsToResponse(stats))
}

// SetupSecondFactorHandler generates a candidate TOTP secret.
// POST /v1/profile/2fa/setup - Requires an authenticated session.
// Returns 200 OK with the secret and provisioning URI; nothing is enrolled
// until confirmed.
func (h *ProfileHandler) SetupSecondFactorHandler(c *gin.Context) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	setup, err := h.identityUseCase.SetupSecondFactor(c.Request.Context(), identity.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.SecondFactorSetupResponse{
		Secret:          setup.Secret,
		ProvisioningURI: setup.ProvisioningURI,
	})
}

// ConfirmSecondFactorHandler enrolls the candidate secret after verifying a
// code.
// POST /v1/profile/2fa/confirm - Requires an authenticated session.
func (h *ProfileHandler) ConfirmSecondFactorHandler(c *gin.Context) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ConfirmSecondFactorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.identityUseCase.ConfirmSecondFactor(c.Request.Context(), identity.ID, req.Secret, req.Code); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DisableSecondFactorHandler removes the enrolled secret.
// DELETE /v1/profile/2fa - Requires an authenticated session.
func (h *ProfileHandler) DisableSecondFactorHandler(c *gin.Context) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.identityUseCase.DisableSecondFactor(c.Request.Context(), identity.ID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
