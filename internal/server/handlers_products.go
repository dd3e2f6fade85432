package server

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/domain"
	apperrors "github.com/Aeyroxx/lace-allure-queue-system/internal/errors"
)

func (s *Server) handleGetProducts(c echo.Context) error {
	products, err := s.queue.GetProducts(c.Request().Context())
	if err != nil {
		return err
	}
	if err := c.JSON(200, products); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAddProduct(c echo.Context) error {
	var input domain.NewProduct
	if err := c.Bind(&input); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	product, err := s.queue.AddProduct(c.Request().Context(), input)
	if err != nil {
		return err
	}
	if err := c.JSON(200, product); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteProduct(c echo.Context) error {
	id := c.Param("id")

	deleted, err := s.queue.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFoundError("product not found").WithField("id", id)
	}
	if err := c.JSON(200, map[string]bool{"success": true}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
