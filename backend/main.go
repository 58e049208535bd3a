package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/taskrally/taskrally-backend/backend/config"
	"github.com/taskrally/taskrally-backend/backend/handlers"
	"github.com/taskrally/taskrally-backend/backend/middleware"
	webmodels "github.com/taskrally/taskrally-backend/backend/models"
	webservices "github.com/taskrally/taskrally-backend/backend/services"
	"github.com/taskrally/taskrally-backend/taskrally"
	"github.com/taskrally/taskrally-backend/taskrally/database"
	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
	"github.com/taskrally/taskrally-backend/taskrally/logger"
	"github.com/taskrally/taskrally-backend/taskrally/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	customHandler := logger.NewHandler("TaskRally-Backend")
	slog.SetDefault(slog.New(customHandler))

	logger.LogSystem("Starting TaskRally Backend API",
		slog.String("version", version),
		slog.String("commit", commit))

	cfg, err := taskrally.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	webCfg := config.NewWebAppConfig(cfg, version == "dev")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...")
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Database connected successfully")

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.Error("Failed to parse redis URL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Notifications are best-effort; a cold redis must not block startup.
		slog.Warn("Redis unreachable at startup", slog.String("error", err.Error()))
	}

	repos := webmodels.NewRepositories(
		repositories.NewUserRepository(db.BunDB()),
		repositories.NewMissionRepository(db.BunDB()),
		repositories.NewSubmissionRepository(db.BunDB()),
		repositories.NewLedgerRepository(db.BunDB()),
		repositories.NewThreadRepository(db.BunDB()),
		repositories.NewMessageRepository(db.BunDB()),
		repositories.NewFeedPostRepository(db.BunDB()),
		repositories.NewFollowRepository(db.BunDB()),
	)

	spacesService := services.NewSpacesService(
		cfg.Spaces.Key,
		cfg.Spaces.Secret,
		cfg.Spaces.Region,
		cfg.Spaces.Bucket,
		cfg.Spaces.RewardRoot,
	)

	notifier := services.NewRedisNotifier(rdb)
	experience := services.NewExperienceLedger(cfg.Rewards.ClubFollowBonus)
	coordinator := services.NewAcceptanceCoordinator(
		db.BunDB(),
		repos.Submission,
		repos.Mission,
		repos.User,
		repos.Ledger,
		repos.Thread,
		repos.Message,
		repos.FeedPost,
		repos.Follow,
		experience,
		notifier,
	)

	sessionService, err := webservices.NewSessionService(repos.User)
	if err != nil {
		slog.Error("Failed to create session service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:      "TaskRally Backend API",
		ServerHeader: "TaskRally-Backend",
		BodyLimit:    12 << 20, // multipart envelope around the 10 MB media cap
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     webCfg.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{
		Config:         webCfg,
		DB:             db,
		Repos:          repos,
		SpacesService:  spacesService,
		SessionService: sessionService,
		Coordinator:    coordinator,
		Version:        version,
		Commit:         commit,
	}

	setupRoutes(app, webApp)

	address := webCfg.Address()
	slog.Info("Starting backend server", slog.String("address", address))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return app.Listen(address)
	})
	g.Go(func() error {
		select {
		case <-sig:
			slog.Info("Shutting down backend server...")
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.LogError("Server error", err)
	}

	db.Close()
	if err := rdb.Close(); err != nil {
		slog.Warn("Redis close error", slog.String("error", err.Error()))
	}

	slog.Info("Backend server shutdown complete")
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "TaskRally Backend API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	api := app.Group("/api")
	api.Use(middleware.AuthRequired(webApp))

	submissions := api.Group("/submissions")
	submissions.Post("/:id/accept", handlers.SubmissionsAccept(webApp))
	submissions.Post("/:id/refuse", handlers.SubmissionsRefuse(webApp))
}
