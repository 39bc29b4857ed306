package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	// AllowedOrigins are added to connect-src so browser chat clients can
	// open the websocket.
	AllowedOrigins []string
	IsDevelopment  bool
}

// HeadersMiddleware sets hardening headers suited to a JSON API.
func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := buildPolicy(cfg.AllowedOrigins)

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderReferrerPolicy, "no-referrer")
		c.Set(fiber.HeaderContentSecurityPolicy, csp)
		c.Set(fiber.HeaderCacheControl, "no-store")

		if !cfg.IsDevelopment {
			c.Set(fiber.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		}

		return c.Next()
	}
}

func buildPolicy(origins []string) string {
	connect := append([]string{"'self'"}, origins...)
	return "default-src 'none'; " +
		"connect-src " + strings.Join(connect, " ") + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'none'"
}
