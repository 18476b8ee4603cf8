package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/raksha-app/raksha/internal/auth"
)

// JWTAuth validates the access token and rejects tokens whose version no
// longer matches the user. Both "Bearer" and "Token" schemes are accepted.
func JWTAuth(tokens *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := credential(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		user, err := tokens.Authenticate(c.UserContext(), raw)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(auth.LocalUserID, user.ID)
		c.Locals(auth.LocalUsername, user.Username)
		return c.Next()
	}
}

func credential(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
	default:
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
