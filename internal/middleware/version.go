package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	versionHeader  = "X-Api-Version"
	versionLocal   = "apiVersion"
	defaultVersion = "1.0.0"
)

// VersionMiddleware normalizes the X-Api-Version request header, keeps
// the negotiated version in the request context, and echoes it on the
// response so clients see which version served them.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get(versionHeader, defaultVersion)

		// Support version aliases
		if version == "1.0" {
			version = defaultVersion
		}

		c.Locals(versionLocal, version)
		c.Set(versionHeader, version)

		return c.Next()
	}
}

// APIVersion returns the version negotiated for the request, or the
// default when the middleware has not run.
func APIVersion(c *fiber.Ctx) string {
	if v, ok := c.Locals(versionLocal).(string); ok && v != "" {
		return v
	}
	return defaultVersion
}
