package httpserver

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

// requireAuth is the access guard. The token comes from the access token
// cookie, or failing that from an Authorization bearer header.
func (s *HTTPServer) requireAuth(c *fiber.Ctx) error {
	token := c.Cookies(common.AccessTokenCookieName)
	if token == "" {
		token = bearerToken(c.Get(fiber.HeaderAuthorization))
	}

	user, err := s.users.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.SetUserContext(auth.WithUser(c.UserContext(), user))
	return c.Next()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// limitJSONBody caps JSON request bodies; multipart uploads use the larger
// server-wide limit.
func (s *HTTPServer) limitJSONBody(c *fiber.Ctx) error {
	if s.cfg.JSONBodyLimit > 0 && c.Is("json") && len(c.Body()) > s.cfg.JSONBodyLimit {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "request body too large")
	}
	return c.Next()
}

func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status, _ = statusFor(err)
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency", time.Since(start).String(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)
	return err
}
