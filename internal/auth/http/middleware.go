package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/notehub/internal/errors"
	"github.com/allisson/notehub/internal/httputil"
	identityUsecase "github.com/allisson/notehub/internal/identity/usecase"
	sessionDomain "github.com/allisson/notehub/internal/session/domain"
	sessionUsecase "github.com/allisson/notehub/internal/session/usecase"
)

// BearerToken extracts the bearer token from the Authorization header.
// Returns ("", false) when the header is missing or malformed. The prefix
// check is case-insensitive.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// SessionMiddleware authenticates requests via a bearer session token.
//
// Only fully authenticated sessions pass: pending second factor sessions are
// rejected the same way as missing or expired ones. On success the session
// and its identity are stored in the request context for downstream
// handlers.
func SessionMiddleware(
	sessionUC sessionUsecase.UseCase,
	identityUC identityUsecase.UseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken, ok := BearerToken(c)
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		session, err := sessionUC.GetWithState(c.Request.Context(), plainToken, sessionDomain.StateAuthenticated)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		identity, err := identityUC.GetByID(c.Request.Context(), session.IdentityID)
		if err != nil {
			logger.Debug("authentication failed: identity lookup",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		ctx := WithSession(c.Request.Context(), session)
		ctx = WithIdentity(ctx, identity)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
