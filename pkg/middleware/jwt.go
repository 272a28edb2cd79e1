package middleware

import (
	"net/http"
	"strings"

	"CareerConnect/internal/access"
	"CareerConnect/internal/auth"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTMiddleware verifies the bearer token and stores the caller's access.Identity on the context.
// Role and ownership checks happen later in the services.
func JWTMiddleware(tokens *auth.Tokens, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Token"})
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := tokens.Validate(tokenString)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid Token"})
			}
			id, err := claims.Identity()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid Token"})
			}
			c.Set(access.ContextKey, id)
			return next(c)
		}
	}
}
