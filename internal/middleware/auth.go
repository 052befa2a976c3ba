package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/lib/token"
	"github.com/deppfellow/portfolio-api/internal/server"
)

const (
	MsgTokenRequired = "Access token required"
	MsgInvalidToken  = "Invalid token"
)

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	VerifyToken(raw string) (*token.Claims, error)
}

type AuthMiddleware struct {
	server   *server.Server
	verifier TokenVerifier
}

func NewAuthMiddleware(s *server.Server, verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		server:   s,
		verifier: verifier,
	}
}

// RequireAuth admits requests carrying a valid "Authorization: Bearer"
// token. A missing token is 401, an invalid or expired one 403.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		logger := GetLogger(c)

		raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			return errs.NewUnauthorizedError(MsgTokenRequired, true)
		}

		claims, err := auth.verifier.VerifyToken(raw)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("rejected bearer token")
			return errs.NewForbiddenError(MsgInvalidToken, true)
		}

		c.Set(UserIDKey, claims.ID)
		c.Set(ClaimsKey, claims)

		authed := logger.With().Str("user_id", claims.ID).Logger()
		setLogger(c, &authed)

		authed.Debug().
			Str("function", "RequireAuth").
			Str("username", claims.Username).
			Dur("duration", time.Since(start)).
			Msg("admin authenticated")

		return next(c)
	}
}

func bearerToken(header string) string {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
