package api

import (
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v3"
	jwtv4 "github.com/golang-jwt/jwt/v4"

	"github.com/DualDorans/ai-humanizer-project/internal/config"
	"github.com/DualDorans/ai-humanizer-project/internal/humanizer"
	"github.com/DualDorans/ai-humanizer-project/internal/ledger"
	"github.com/DualDorans/ai-humanizer-project/internal/projects"
	"github.com/DualDorans/ai-humanizer-project/pkg/database"
)

type Server struct {
	app          *fiber.App
	cfg          *config.Config
	db           *database.Clients
	producer     sarama.SyncProducer
	ledger       *ledger.Ledger
	projects     *projects.Store
	orchestrator *humanizer.Orchestrator
	tracker      *humanizer.Tracker
	logger       *slog.Logger
}

func NewServer(cfg *config.Config, db *database.Clients, producer sarama.SyncProducer) *Server {
	creditLedger := ledger.New(db.DB, cfg.Credits.Default)
	tracker := humanizer.NewTracker(humanizer.TrackerConfig{
		WebhookURL:     cfg.Humanizer.WebhookURL,
		WebhookEnabled: cfg.Humanizer.WebhookURL != "",
	})
	orchestrator := humanizer.NewOrchestrator(
		humanizer.NewClient(cfg.Humanizer),
		creditLedger,
		tracker,
		humanizer.PollConfig{
			MaxAttempts: cfg.Humanizer.MaxAttempts,
			Interval:    cfg.Humanizer.PollInterval,
		},
	)

	app := fiber.New()

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:          app,
		cfg:          cfg,
		db:           db,
		producer:     producer,
		ledger:       creditLedger,
		projects:     projects.NewStore(db.DB),
		orchestrator: orchestrator,
		tracker:      tracker,
		logger:       slog.Default(),
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Public routes
	api.Post("/login", s.handleLogin)

	// Protected routes
	protected := api.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(s.cfg.JWT.Secret),
	}))
	protected.Post("/humanize", s.handleHumanize)
	protected.Post("/jobs", s.handleCreateJob)
	protected.Get("/jobs/:id", s.handleGetJob)
	protected.Get("/projects", s.handleListProjects)
	protected.Get("/credits", s.handleGetCredits)
	protected.Get("/metrics", s.handleGetMetrics)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

// currentUserID resolves the authenticated user's id from the verified JWT.
// The jwt middleware stores the parsed token in locals under "user".
func currentUserID(c *fiber.Ctx) string {
	token, ok := c.Locals("user").(*jwtv4.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwtv4.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
