package httpserver

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/filex"
	"github.com/dmitrijs2005/videotube/internal/server/auth"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/dmitrijs2005/videotube/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type sessionResponse struct {
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (s *HTTPServer) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var staged []string
	defer func() {
		for _, p := range staged {
			if err := filex.RemoveIfExists(p); err != nil {
				s.logger.Warn(ctx, "failed to remove staged file", "path", p, "error", err)
			}
		}
	}()

	in := services.RegisterInput{
		FullName: c.FormValue("fullName"),
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	// A request without multipart content simply has no files.
	if form, err := c.MultipartForm(); err == nil {
		if in.AvatarPath, err = s.stage(c, form, "avatar"); err != nil {
			return err
		}
		if in.AvatarPath != "" {
			staged = append(staged, in.AvatarPath)
		}
		if in.CoverImagePath, err = s.stage(c, form, "coverImage"); err != nil {
			return err
		}
		if in.CoverImagePath != "" {
			staged = append(staged, in.CoverImagePath)
		}
	}

	user, err := s.users.Register(ctx, in)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, user, "User registered successfully")
}

// stage saves the first file of field into the staging dir and returns its
// path, or "" when the field has no file.
func (s *HTTPServer) stage(c *fiber.Ctx, form *multipart.Form, field string) (string, error) {
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}

	path := filex.StagedPath(s.stagingDir, files[0].Filename)
	if err := c.SaveFile(files[0], path); err != nil {
		return "", common.WrapError(common.ErrorInternal, "failed to store uploaded file", err)
	}
	return path, nil
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return common.WrapError(common.ErrorValidation, "invalid request body", err)
	}

	sess, err := s.users.Login(c.UserContext(), in)
	if err != nil {
		return err
	}

	setSessionCookies(c, sess.Tokens)
	return respond(c, fiber.StatusOK, sessionResponse{
		User:         sess.User,
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	}, "User logged in successfully")
}

func (s *HTTPServer) logout(c *fiber.Ctx) error {
	user, _ := auth.UserFromContext(c.UserContext())

	if err := s.users.Logout(c.UserContext(), user.ID); err != nil {
		return err
	}

	clearSessionCookies(c)
	return respond(c, fiber.StatusOK, fiber.Map{}, "User logged out")
}

func (s *HTTPServer) refreshToken(c *fiber.Ctx) error {
	token := c.Cookies(common.RefreshTokenCookieName)
	if token == "" && len(c.Body()) > 0 {
		var body struct {
			RefreshToken string `json:"refreshToken" form:"refreshToken"`
		}
		if err := c.BodyParser(&body); err != nil {
			return common.WrapError(common.ErrorValidation, "invalid request body", err)
		}
		token = body.RefreshToken
	}

	sess, err := s.users.RefreshSession(c.UserContext(), token)
	if err != nil {
		return err
	}

	setSessionCookies(c, sess.Tokens)
	return respond(c, fiber.StatusOK, sessionResponse{
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	}, "Access token refreshed")
}

func (s *HTTPServer) changePassword(c *fiber.Ctx) error {
	user, _ := auth.UserFromContext(c.UserContext())

	var in services.ChangePasswordInput
	if err := c.BodyParser(&in); err != nil {
		return common.WrapError(common.ErrorValidation, "invalid request body", err)
	}

	if err := s.users.ChangePassword(c.UserContext(), user.ID, in); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{}, "Password changed successfully")
}

func (s *HTTPServer) currentUser(c *fiber.Ctx) error {
	user, _ := auth.UserFromContext(c.UserContext())
	return respond(c, fiber.StatusOK, user, "Current user fetched successfully")
}
