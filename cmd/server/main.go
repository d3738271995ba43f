package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/api"
	"github.com/Peblo69/BGman4e/internal/auth"
	"github.com/Peblo69/BGman4e/internal/chat"
	"github.com/Peblo69/BGman4e/internal/config"
	"github.com/Peblo69/BGman4e/internal/database"
	"github.com/Peblo69/BGman4e/internal/images"
	"github.com/Peblo69/BGman4e/internal/repository/postgres"
	"github.com/Peblo69/BGman4e/internal/translate"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BulgarGPT Backend",
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(images.MaxUploadSize) + 1024*1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Repositories
	userRepo := postgres.NewUserRepository(db.DB)
	authSessionRepo := postgres.NewUserSessionRepository(db.DB)
	resetTokenRepo := postgres.NewResetTokenRepository(db.DB)
	chatSessionRepo := postgres.NewSessionRepository(db.DB)
	profileRepo := postgres.NewProfileRepository(db.DB)

	// Services
	jwtSecret := cfg.Server.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production"
		logrus.Warn("Using default JWT secret. Set BULGARGPT_JWT_SECRET in production!")
	}
	authService := auth.NewService(userRepo, authSessionRepo, resetTokenRepo, auth.NewLogMailer(), jwtSecret)

	uploads := images.NewRegistry()
	translator := translate.NewTranslator(cfg.Translate)

	svc := &api.Services{
		Auth:      authService,
		Store:     chat.NewStore(chatSessionRepo),
		Streamer:  chat.NewStreamer(cfg.Chat, uploads),
		Generator: images.NewGenerator(cfg.Images, translator),
		Analyzer:  images.NewAnalyzer(cfg.Images, cfg.Chat),
		Uploads:   uploads,
		Profiles:  profileRepo,
	}

	api.SetupRoutes(app, svc)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logrus.WithField("addr", addr).Info("BulgarGPT backend starting")
	if err := app.Listen(addr); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
