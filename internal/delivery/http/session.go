package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/weatherlookup/backend/internal/service"
)

// SessionCookie names the cookie carrying the UI session ID
const SessionCookie = "wl_session"

const lookupLocal = "lookup"

// sessionMiddleware attaches the caller's WeatherLookup to the request
func sessionMiddleware(registry *service.SessionRegistry, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current := c.Cookies(SessionCookie)
		id, lookup := registry.Acquire(current)
		if id != current {
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(lookupLocal, lookup)
		return c.Next()
	}
}

func lookupFrom(c *fiber.Ctx) *service.WeatherLookup {
	lookup, _ := c.Locals(lookupLocal).(*service.WeatherLookup)
	return lookup
}
