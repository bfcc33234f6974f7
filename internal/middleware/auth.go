package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/gioh-mkv/almanac/internal/apperror"
)

// RequireToken returns middleware that guards write endpoints with a static
// bearer token. The configured value is a bcrypt hash of the token, so a
// leaked config file or environment dump does not reveal the token itself.
//
// An empty hash disables the check entirely -- acceptable for local
// development, refused at startup in production by config.Load.
func RequireToken(tokenHash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tokenHash == "" {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			token, ok := bearerToken(header)
			if !ok {
				return apperror.NewUnauthorized("missing bearer token")
			}

			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				return apperror.NewUnauthorized("invalid token")
			}

			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme comparison is case-insensitive per RFC 9110.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) {
		return "", false
	}
	if !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
