package server

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	apperrors "github.com/Aeyroxx/lace-allure-queue-system/internal/errors"
)

func (s *Server) handleGetQueue(c echo.Context) error {
	items, err := s.queue.GetQueue(c.Request().Context())
	if err != nil {
		return err
	}
	if err := c.JSON(200, items); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAddQueueItem(c echo.Context) error {
	var input domain.NewQueueItem
	if err := c.Bind(&input); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	item, err := s.queue.AddQueueItem(c.Request().Context(), input)
	if err != nil {
		return err
	}
	if err := c.JSON(200, item); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateStatus(c echo.Context) error {
	id := c.Param("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	item, err := s.queue.UpdateQueueItemStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		return err
	}
	if err := c.JSON(200, item); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAddFollowUp(c echo.Context) error {
	id := c.Param("id")

	var body struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&body); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	item, err := s.queue.AddFollowUp(c.Request().Context(), id, body.Message)
	if err != nil {
		return err
	}
	if err := c.JSON(200, item); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteQueueItem(c echo.Context) error {
	id := c.Param("id")

	deleted, err := s.queue.DeleteQueueItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFoundError("queue item not found").WithField("id", id)
	}
	if err := c.JSON(200, map[string]bool{"success": true}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
