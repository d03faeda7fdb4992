package middleware

import (
	"context"
	"myUserCatalog/pkg/logger"
	"myUserCatalog/pkg/utils"
	"net/http"
	"strconv"
	"strings"
	"time"

	"myUserCatalog/pkg/response"

	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextToken  = "token"
)

type TokenParser interface {
	ParseJWT(token string) (*utils.Claims, error)
}

// TokenValidator checks that a token is still live in the session store.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uint, error)
}

type authConfig struct {
	validator TokenValidator
}

type AuthOption func(*authConfig)

// WithTokenValidator requires tokens to also be present in the session store.
func WithTokenValidator(v TokenValidator) AuthOption {
	return func(c *authConfig) {
		c.validator = v
	}
}

func unauthorized(c echo.Context) error {
	return response.Error(c, "Unauthorized", http.StatusUnauthorized)
}

// AuthMiddleware accepts requests carrying "Authorization: Bearer <jwt>" and
// stores the caller's id, role and token in the echo context.
func AuthMiddleware(parser TokenParser, opts ...AuthOption) echo.MiddlewareFunc {
	cfg := &authConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c)
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
				return unauthorized(c)
			}

			tokenString := tokenParts[1]

			claims, err := parser.ParseJWT(tokenString)
			if err != nil {
				logger.Debug("Rejected token", "error", err)
				return unauthorized(c)
			}

			userID, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil {
				logger.Warn("Invalid user ID in token", "user_id", claims.UserID)
				return unauthorized(c)
			}

			if cfg.validator != nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				defer cancel()

				storedID, err := cfg.validator.ValidateToken(ctx, tokenString)
				if err != nil {
					logger.Debug("Token not found in session store", "error", err)
					return unauthorized(c)
				}

				if storedID != uint(userID) {
					logger.Warn("UserID mismatch between token and session store", "token_user", userID, "stored_user", storedID)
					return unauthorized(c)
				}
			}

			c.Set(ContextUserID, uint(userID))
			c.Set(ContextRole, claims.Role)
			c.Set(ContextToken, tokenString)

			return next(c)
		}
	}
}
