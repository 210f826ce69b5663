package requestid

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/feeds/internal/pkg/log"
)

const (
	// HeaderRequestID is the HTTP header name for request ID
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID is the key used to store request ID in Fiber context
	ContextKeyRequestID = "request_id"

	// maxInboundLength caps caller-supplied ids before they reach the logs
	maxInboundLength = 128
)

// New tags every request with an id. A usable inbound X-Request-ID is kept so
// the caller can correlate logs; anything else is replaced with a fresh UUID.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, ok := sanitize(c.Get(HeaderRequestID))
		if !ok {
			requestID = uuid.Must(uuid.NewV4()).String()
		}

		c.Locals(ContextKeyRequestID, requestID)
		c.SetUserContext(log.WithRequestID(c.UserContext(), requestID))
		c.Set(HeaderRequestID, requestID)

		return c.Next()
	}
}

// GetRequestID retrieves the request ID from Fiber context
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// sanitize accepts printable ASCII ids without spaces, up to maxInboundLength
func sanitize(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxInboundLength {
		return "", false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return "", false
		}
	}
	return id, true
}
