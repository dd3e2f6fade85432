package server

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/Aeyroxx/lace-allure-queue-system/internal/errors"
)

func (s *Server) handleGenerateAudio(c echo.Context) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&body); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	message := strings.TrimSpace(body.Message)
	if message == "" {
		return apperrors.ValidationError("message is required")
	}

	filename, err := s.audio.Generate(c.Request().Context(), message)
	if err != nil {
		return apperrors.InternalError("failed to generate audio", err)
	}

	if err := c.JSON(200, map[string]string{
		"audioUrl": "/audio/" + filename,
		"message":  message,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
