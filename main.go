package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"netguard/internal/charts"
	"netguard/internal/config"
	"netguard/internal/handlers"
	"netguard/internal/middleware"
	"netguard/internal/ml"
	"netguard/internal/repositories"
	"netguard/internal/services"
	"netguard/pkg/logging"
	"netguard/pkg/rabbitmq"
	"netguard/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	app, cleanup, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create app", zap.Error(err))
	}
	defer cleanup()

	logger.Info("Starting server", zap.String("port", cfg.AppPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	logger.Info("Server gracefully stopped")
}

// newApp loads the model bundle, opens the credential store and wires the
// Fiber app. The returned cleanup releases the store and broker connections.
func newApp(cfg *config.Config, logger *zap.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Model artifacts ---
	bundle, err := ml.LoadBundle(ml.ArtifactPaths{
		Classifier: cfg.Model.ClassifierPath(),
		Scaler:     cfg.Model.ScalerPath(),
		Features:   cfg.Model.FeaturesPath(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load model artifacts: %w", err)
	}
	logger.Info("Model artifacts loaded",
		zap.String("dir", cfg.Model.Dir),
		zap.Int("features", len(bundle.Features())),
	)

	// --- Credential store ---
	var userRepo repositories.UserRepository
	if cfg.Database.Driver == "memory" {
		userRepo = repositories.NewMemoryUserRepository()
	} else {
		db, err := repositories.OpenDatabase(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := repositories.CloseDatabase(db); err != nil {
				logger.Warn("Error closing database", zap.Error(err))
			}
		})
		userRepo = repositories.NewGORMUserRepository(db)
	}

	var policy services.PasswordPolicy = services.PlaintextPolicy{}
	if cfg.HashPasswords {
		policy = services.BcryptPolicy{Cost: bcrypt.DefaultCost}
	} else {
		logger.Warn("Passwords are stored in plaintext; set AUTH_HASH_PASSWORDS=true to hash them")
	}

	// --- Prediction events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := mqClient.Close(); err != nil {
				logger.Warn("Error closing RabbitMQ client", zap.Error(err))
			}
		})
		publisher = mqClient
		logger.Info("Prediction events enabled", zap.String("queue", cfg.RabbitMQ.Queue))
	}

	// --- Services and handlers ---
	authService := services.NewAuthService(userRepo, policy, logger)
	predictService := services.NewPredictService(bundle, charts.NewRenderer(), publisher, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	pageHandler := handlers.NewPageHandler()
	predictHandler := handlers.NewPredictHandler(predictService, logger)

	app := fiber.New(fiber.Config{
		Views:                 web.NewEngine(),
		BodyLimit:             cfg.MaxUploadMB * 1024 * 1024,
		ErrorHandler:          middleware.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	// The request logger sits outside Recover so panicking requests are logged.
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.Recover(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.TrimSpace(cfg.CORSOrigins),
	}))

	authHandler.RegisterRoutes(app)
	pageHandler.RegisterRoutes(app)
	predictHandler.RegisterRoutes(app)

	return app, cleanup, nil
}
