package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "current_user"

// Middleware authenticates every request: bearer token → verified claims →
// user upsert → approval gate. The upsert always commits before the gate is
// checked, so a first login from an unapproved account still materializes
// the user row even though the request fails with 403.
func Middleware(verifier TokenVerifier, dir Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing Google ID token.")
		}

		claims, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			log.Printf("error verifying Google ID token: %v", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid Google ID token.")
		}

		if !ValidIssuer(claims.Issuer) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token issuer.")
		}

		user, err := dir.ResolveOrCreate(c.UserContext(), claims)
		if err != nil {
			log.Printf("error resolving user %s: %v", claims.Subject, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve user")
		}

		if !user.Approved {
			return fiber.NewError(fiber.StatusForbidden, "Account pending approval.")
		}

		c.Locals(userLocal, user)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// CurrentUser returns the authenticated user stored by the middleware.
func CurrentUser(c *fiber.Ctx) (*User, bool) {
	u, ok := c.Locals(userLocal).(*User)
	return u, ok
}

// CurrentUserID returns the authenticated user's id or an error when the
// middleware did not run.
func CurrentUserID(c *fiber.Ctx) (string, error) {
	u, ok := CurrentUser(c)
	if !ok || u.ID == "" {
		return "", errors.New("user missing from request context")
	}
	return u.ID, nil
}
