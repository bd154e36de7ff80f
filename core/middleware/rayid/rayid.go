// Package rayid tags every request with a unique id.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header is the response header carrying the ray id.
	Header = "X-Ray-ID"
	// LocalKey is the fiber.Ctx local holding the ray id.
	LocalKey = "ray_id"
)

// New returns middleware that reuses an incoming ray id or generates one,
// stores it in the request locals and echoes it in the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Locals(LocalKey, rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
