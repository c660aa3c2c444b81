package middleware

import (
	"github.com/anjiri1684/educonnect/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	userIDLocal = "user_id"
	roleLocal   = "role"
)

// Protected verifies the bearer JWT and stores the caller's id and role in the request locals.
func Protected(secret string) fiber.Handler {
	return protected(secret, "header:Authorization")
}

// ProtectedQuery reads the JWT from the token query parameter, for websocket handshakes where
// browsers cannot set headers.
func ProtectedQuery(secret string) fiber.Handler {
	return protected(secret, "query:token")
}

func protected(secret, lookup string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		TokenLookup:    lookup,
		ErrorHandler:   jwtError,
		SuccessHandler: storeClaims,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func storeClaims(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, jwt.ErrTokenMalformed)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, jwt.ErrTokenMalformed)
	}
	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return jwtError(c, err)
	}
	role, _ := claims["role"].(string)

	c.Locals(userIDLocal, userID)
	c.Locals(roleLocal, role)
	return c.Next()
}

// UserID returns the authenticated caller; only valid behind Protected.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(userIDLocal).(uuid.UUID)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(roleLocal).(string)
	return role
}

func requireRole(message string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": message,
		})
	}
}

// InstructorRequired admits instructors and moderators.
func InstructorRequired() fiber.Handler {
	return requireRole("Forbidden: Instructor access required", models.RoleInstructor, models.RoleModerator)
}

func StudentRequired() fiber.Handler {
	return requireRole("Forbidden: Student access required", models.RoleStudent)
}
