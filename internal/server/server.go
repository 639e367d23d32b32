package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gravadigital/galawall-api/internal/admin"
	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/engine"
	"github.com/gravadigital/galawall-api/internal/guard"
	"github.com/gravadigital/galawall-api/internal/handlers"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/middleware/auth"
	"github.com/gravadigital/galawall-api/internal/middleware/events"
	"github.com/gravadigital/galawall-api/internal/reveal"
	"github.com/gravadigital/galawall-api/internal/storage/object"
	"github.com/gravadigital/galawall-api/internal/storage/postgres"
)

// Server represents the HTTP server and the long-lived coordination pieces
// that ride alongside it: the shared reconciliation engine feeding the event
// stream, the reveal orchestrator and the cross-instance change notifier.
type Server struct {
	httpServer   *http.Server
	config       *config.Config
	db           *gorm.DB
	engine       *engine.Engine
	orchestrator *reveal.Orchestrator
	notifier     *postgres.Notifier
}

// New creates a new server instance
func New(cfg *config.Config, db *gorm.DB) *Server {
	return &Server{
		config: cfg,
		db:     db,
	}
}

// Start wires the stores, engine and orchestrator, then serves HTTP until
// the listener fails or Stop is called.
func (s *Server) Start() error {
	participantRepo := postgres.NewParticipantRepository(s.db)
	configRepo := postgres.NewConfigRepository(s.db)
	ballotRepo := postgres.NewBallotRepository(s.db)

	photos, err := object.NewPhotoStore(s.config)
	if err != nil {
		return fmt.Errorf("failed to initialize photo store: %w", err)
	}
	if photos != nil {
		if err := photos.EnsureBucket(context.Background()); err != nil {
			return fmt.Errorf("failed to prepare photo bucket: %w", err)
		}
	}

	// The server-side engine uses a throwaway guard; per-voter guards live in
	// browser cookies and are reconstructed per request.
	s.engine = engine.New(guard.NewMemoryStore())
	s.engine.Start(participantRepo, configRepo)
	if err := s.engine.Load(participantRepo, configRepo); err != nil {
		return fmt.Errorf("failed to load initial state: %w", err)
	}

	s.orchestrator = reveal.New(s.engine, configRepo, s.config.Reveal)
	s.orchestrator.Start()

	s.notifier, err = postgres.NewNotifier(s.config, participantRepo, configRepo)
	if err != nil {
		logger.Get().Warn("Change notifier unavailable, running single-instance", "error", err)
	} else {
		s.notifier.Start()
	}

	adminSvc := admin.NewService(s.config, configRepo, participantRepo, ballotRepo)
	contestHandler := handlers.NewContestHandler(participantRepo, configRepo, ballotRepo, photos)
	adminHandler := handlers.NewAdminHandler(adminSvc, s.orchestrator)
	streamHandler := handlers.NewStreamHandler(s.engine, s.orchestrator)

	router := s.setupRouter(contestHandler, adminHandler, streamHandler, adminSvc)

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // SSE connections stay open
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server and the coordination pieces.
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.orchestrator != nil {
		s.orchestrator.Stop()
	}
	if s.engine != nil {
		s.engine.Stop()
	}
	if s.notifier != nil {
		if err := s.notifier.Stop(); err != nil {
			logger.Get().Warn("Failed to stop change notifier", "error", err)
		}
	}

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter(
	contestHandler *handlers.ContestHandler,
	adminHandler *handlers.AdminHandler,
	streamHandler *handlers.StreamHandler,
	adminSvc *admin.Service,
) *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(events.RequestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Galawall API is running",
			"status":  "healthy",
		})
	})

	api := router.Group("/api")
	{
		api.GET("/state", contestHandler.GetState)
		api.GET("/stream", streamHandler.Stream)

		participants := api.Group("/participants")
		{
			participants.GET("", contestHandler.GetWall)
			participants.POST("", contestHandler.RegisterParticipant)
			participants.POST("/:id/vote", contestHandler.CastVote)
		}

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/login", adminHandler.Login)

			protected := adminGroup.Group("")
			protected.Use(auth.AdminRequired(adminSvc))
			{
				protected.PATCH("/config", adminHandler.UpdateConfig)
				protected.GET("/stats", adminHandler.GetStats)
				protected.POST("/reveal", adminHandler.ArmReveal)
				protected.GET("/reveal", adminHandler.GetReveal)
				protected.POST("/draw", adminHandler.DrawLuckyWinner)
				protected.POST("/reset", adminHandler.Reset)
				protected.POST("/simulate/participant", adminHandler.SimulateParticipant)
				protected.POST("/simulate/votes", adminHandler.SimulateVotes)
			}
		}
	}

	return router
}
