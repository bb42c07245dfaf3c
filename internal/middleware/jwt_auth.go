package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// ClaimsKey is the context key holding *models.JwtCustomClaims
const ClaimsKey = "user"

// TokenParser validates a bearer token. *services.AuthService implements it.
type TokenParser interface {
	ParseToken(ctx context.Context, tokenString string) (*models.JwtCustomClaims, error)
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

// JWTAuthMiddleware checks for a valid, unrevoked JWT and stores its claims in the context.
func JWTAuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := parser.ParseToken(c.Request().Context(), tokenString)
			if err != nil {
				if apperrors.Is(err, apperrors.KindInternal) {
					return echo.NewHTTPError(http.StatusInternalServerError, "Failed to validate token")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.Message(err))
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// Claims returns the claims stored by JWTAuthMiddleware, or nil.
func Claims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(ClaimsKey).(*models.JwtCustomClaims)
	return claims
}
