package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Aeyroxx/lace-allure-queue-system/internal/broadcast"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/config"
	apperrors "github.com/Aeyroxx/lace-allure-queue-system/internal/errors"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/queue"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/storage"
	"github.com/Aeyroxx/lace-allure-queue-system/internal/tts"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	queue     *queue.Service
	hub       *broadcast.Hub
	store     storage.Store
	audio     *tts.Generator
	limits    *ConnectionLimits
	startTime time.Time
}

func NewServer(cfg *config.Config, queueSvc *queue.Service, hub *broadcast.Hub, store storage.Store, audio *tts.Generator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		queue:     queueSvc,
		hub:       hub,
		store:     store,
		audio:     audio,
		limits:    NewConnectionLimits(cfg.WSMaxClients, cfg.WSMaxPerIP, cfg.WSConnectsPerSec, cfg.WSConnectBurst),
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
