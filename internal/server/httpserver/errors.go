package httpserver

import (
	"errors"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type apiResponse struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func respond(c *fiber.Ctx, status int, data any, msg string) error {
	return c.Status(status).JSON(apiResponse{Status: status, Data: data, Message: msg})
}

var kindStatus = []struct {
	kind   error
	status int
}{
	{common.ErrorValidation, fiber.StatusBadRequest},
	{common.ErrorConflict, fiber.StatusConflict},
	{common.ErrorUnauthorized, fiber.StatusUnauthorized},
	{common.ErrorNotFound, fiber.StatusNotFound},
	{common.ErrorUpload, fiber.StatusBadRequest},
	{common.ErrorInternal, fiber.StatusInternalServerError},
}

func kindToStatus(err error) int {
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status
		}
	}
	return fiber.StatusInternalServerError
}

// statusFor maps an error to an HTTP status and a caller-safe message.
func statusFor(err error) (int, string) {
	var ce *common.Error
	if errors.As(err, &ce) {
		return kindToStatus(ce.Kind), ce.Message
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	status := kindToStatus(err)
	if status == fiber.StatusInternalServerError {
		return status, "internal error"
	}
	return status, err.Error()
}

// errorHandler is the single error boundary for all routes.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	status, msg := statusFor(err)

	ctx := c.UserContext()
	if status >= fiber.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "path", c.Path(), "status", status, "error", err)
	} else {
		s.logger.Warn(ctx, "request rejected", "path", c.Path(), "status", status, "error", err)
	}

	return c.Status(status).JSON(errorResponse{Status: status, Message: msg})
}
