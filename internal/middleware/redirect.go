package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/utils"
)

// RedirectAnonymous guards browser pages: a request without a valid session
// cookie is sent to loginURL with the original path in "next". Authenticated
// requests get the same locals AttachJWTLocals sets.
func RedirectAnonymous(secret, loginURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.ParseJWT(secret, c.Cookies(utils.CookieName))
		if err != nil || claims.UserID == "" {
			return c.Redirect(loginURL+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}
		c.Locals("userId", claims.UserID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}
