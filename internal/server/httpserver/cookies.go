package httpserver

import (
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func sessionCookie(name, value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   true,
	}
}

func setSessionCookies(c *fiber.Ctx, tokens services.TokenPair) {
	c.Cookie(sessionCookie(common.AccessTokenCookieName, tokens.AccessToken))
	c.Cookie(sessionCookie(common.RefreshTokenCookieName, tokens.RefreshToken))
}

// clearSessionCookies expires both cookies with the flags they were set with.
func clearSessionCookies(c *fiber.Ctx) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		ck := sessionCookie(name, "")
		ck.Expires = time.Now().Add(-24 * time.Hour)
		c.Cookie(ck)
	}
}
