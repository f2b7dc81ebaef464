package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestIDLocal is the fiber.Ctx local holding the request identifier.
const RequestIDLocal = "request_id"

// RequestID echoes the caller's X-Request-ID or assigns a fresh one.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(RequestIDLocal, reqID)
		return c.Next()
	}
}
