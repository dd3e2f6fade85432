package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Product catalog
	s.echo.GET("/api/products", s.handleGetProducts)
	s.echo.POST("/api/products", s.handleAddProduct)
	s.echo.DELETE("/api/products/:id", s.handleDeleteProduct)

	// Order queue
	s.echo.GET("/api/queue", s.handleGetQueue)
	s.echo.POST("/api/queue", s.handleAddQueueItem)
	s.echo.PUT("/api/queue/:id/status", s.handleUpdateStatus)
	s.echo.POST("/api/queue/:id/follow-up", s.handleAddFollowUp)
	s.echo.DELETE("/api/queue/:id", s.handleDeleteQueueItem)

	// Announcement audio
	s.echo.POST("/api/generate-audio", s.handleGenerateAudio)
	s.echo.Static("/audio", s.audio.Dir())

	// Viewer screens
	s.echo.GET("/ws", s.handleWebSocket)
}
