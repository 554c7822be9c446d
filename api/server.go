package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/cloudsched/scheduler/api/handlers"
	"github.com/cloudsched/scheduler/api/middleware"
	"github.com/cloudsched/scheduler/api/websocket"
	"github.com/cloudsched/scheduler/internal/auth"
	"github.com/cloudsched/scheduler/internal/engine"
	"github.com/cloudsched/scheduler/internal/events"
	"github.com/cloudsched/scheduler/pkg/config"
	"github.com/cloudsched/scheduler/pkg/database"
	"github.com/cloudsched/scheduler/pkg/database/queries"
)

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	wsConfig    config.WebSocketConfig
	db          *database.DB
	engine      *engine.Engine
	scheduler   handlers.Scheduler
	publisher   *events.Publisher
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

type ServerDeps struct {
	Config    config.APIConfig
	WebSocket config.WebSocketConfig
	DB        *database.DB
	Engine    *engine.Engine
	Scheduler handlers.Scheduler
	Publisher *events.Publisher
}

func NewServer(deps ServerDeps) *Server {
	cfg := deps.Config

	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	jwtDuration := cfg.JWTDuration
	if jwtDuration == 0 {
		jwtDuration = 24 * time.Hour
	}
	authService := auth.NewService(cfg.JWTSecret, jwtDuration)
	if cfg.JWTIssuer != "" {
		authService = authService.WithIssuer(cfg.JWTIssuer)
	}

	wsHub := websocket.NewHub(&deps.WebSocket)

	s := &Server{
		router:      router,
		config:      cfg,
		wsConfig:    deps.WebSocket,
		db:          deps.DB,
		engine:      deps.Engine,
		scheduler:   deps.Scheduler,
		publisher:   deps.Publisher,
		authService: authService,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	// Forward orchestrator events to WebSocket clients
	if deps.Scheduler != nil {
		eventsChan := deps.Scheduler.SubscribeAllEvents()
		s.wsBridge = websocket.NewEventBridge(wsHub, eventsChan)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestSizeLimit(1 << 20))

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	userRepo := queries.NewUserRepository(s.db.DB)
	sampleRepo := queries.NewSampleRepository(s.db.DB)
	forecastRepo := queries.NewForecastRepository(s.db.DB)
	decisionRepo := queries.NewDecisionRepository(s.db.DB)

	healthHandler := handlers.NewHealthHandler(s.db)
	authHandler := handlers.NewAuthHandler(userRepo, s.authService)
	samplesHandler := handlers.NewSamplesHandler(sampleRepo, s.publisher, &s.config)
	forecastHandler := handlers.NewForecastHandler(s.engine, s.scheduler, sampleRepo, forecastRepo, decisionRepo, &s.config)
	pipelineHandler := handlers.NewPipelineHandler(s.scheduler)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// Auth routes
	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// API docs
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		// Forecasting
		protected.POST("/predict", forecastHandler.Predict)
		protected.POST("/schedule", forecastHandler.Schedule)

		// Resources and samples
		protected.GET("/resources", samplesHandler.ListResources)
		protected.POST("/resources/:id/samples", samplesHandler.Ingest)
		protected.GET("/resources/:id/samples", samplesHandler.GetSamples)
		protected.GET("/resources/:id/samples/hourly", samplesHandler.GetHourly)
		protected.GET("/resources/:id/samples/latest", samplesHandler.GetLatest)
		protected.GET("/resources/:id/samples/stats", samplesHandler.GetStats)

		// Stored forecasts and decisions
		protected.GET("/resources/:id/forecasts", forecastHandler.GetForecasts)
		protected.GET("/resources/:id/forecasts/latest", forecastHandler.GetLatestForecast)
		protected.GET("/resources/:id/decisions", forecastHandler.GetDecisions)
		protected.GET("/resources/:id/decisions/stats", forecastHandler.GetDecisionStats)
		protected.GET("/decisions/recent", forecastHandler.GetRecentDecisions)

		// Pipeline control
		protected.GET("/pipelines", pipelineHandler.List)
		protected.POST("/resources/:id/pipeline/start", pipelineHandler.Start)
		protected.POST("/resources/:id/pipeline/stop", pipelineHandler.Stop)
		protected.GET("/resources/:id/pipeline", pipelineHandler.Status)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	idleTimeout := s.config.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
