package middleware

import (
	"fmt"
	"strings"

	"recipebox/internal/common"
	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "token_claims"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.TokenClaims, error)
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return authenticate(validator, true)
}

// OptionalAuth verifies a bearer token when one is sent and lets
// anonymous requests through. A bad token is still rejected.
func OptionalAuth(validator TokenValidator) fiber.Handler {
	return authenticate(validator, false)
}

func authenticate(validator TokenValidator, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			if required {
				return fmt.Errorf("%w: authorization header is required", common.ErrInvalidToken)
			}
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fmt.Errorf("%w: authorization header format must be 'Bearer <token>'", common.ErrInvalidToken)
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		c.Locals(claimsKey, claims)
		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}

// ClaimsFrom returns the verified token claims of the request, if any.
func ClaimsFrom(c *fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*services.TokenClaims)
	return claims, ok && claims != nil
}
