package constraints

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// RequireUUID is a Fiber middleware that ensures a path parameter is a valid UUID.
// An invalid value is answered by onInvalid, or a bare 404 when onInvalid is nil,
// and the route handler never runs.
func RequireUUID(param string, onInvalid fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paramValue := c.Params(param)
		if paramValue == "" {
			return c.Next()
		}
		if _, err := uuid.FromString(strings.TrimSpace(paramValue)); err != nil {
			if onInvalid != nil {
				return onInvalid(c)
			}
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.Next()
	}
}
