package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumio-edu/lumio-api/internal/config"
	"github.com/lumio-edu/lumio-api/internal/database"
	"github.com/lumio-edu/lumio-api/internal/handler"
	"github.com/lumio-edu/lumio-api/internal/middleware"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
	"github.com/lumio-edu/lumio-api/internal/router"
	"github.com/lumio-edu/lumio-api/internal/service"
	"github.com/lumio-edu/lumio-api/pkg/ai"
	cloud "github.com/lumio-edu/lumio-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Quiz{},
		&models.Question{},
		&models.Submission{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudService
	} else {
		logger.Warn().Msg("cloudinary is not configured, file uploads disabled")
	}

	var grader ai.Grader
	var assistant ai.Assistant
	if cfg.OpenAIAPIKey != "" {
		aiClient, err := ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai client: %v", err)
		}
		grader = aiClient
		assistant = aiClient
	} else {
		logger.Warn().Msg("openai is not configured, ai grading and assistant disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, logger)
	notificationService := service.NewNotificationService(notificationRepo, classRepo, natsConn, cfg.NATSNotificationTopic, logger)
	classService := service.NewClassService(classRepo, userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classRepo, notificationService, validate, uploader, logger)
	gradeService := service.NewGradeService(classRepo, assignmentRepo, submissionRepo, redisClient, cfg.OverviewCacheTTL, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, quizRepo, classRepo, grader, notificationService, gradeService, validate, logger)
	quizService := service.NewQuizService(quizRepo, classRepo, validate, logger)
	assistantService, err := service.NewAssistantService(assistant, classRepo, assignmentRepo, submissionRepo, validate, logger)
	if err != nil {
		log.Fatalf("failed to create assistant service: %v", err)
	}
	exportService := service.NewExportService(classRepo, submissionRepo, logger)

	seedService := service.NewSeedService(userRepo, cfg.SeedDemoUsers, logger)
	if err := seedService.SeedDemoUsers(context.Background()); err != nil {
		log.Fatalf("failed to seed demo users: %v", err)
	}

	deps := router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		ClassHandler:        handler.NewClassHandler(classService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		GradeHandler:        handler.NewGradeHandler(gradeService, logger),
		AssistantHandler:    handler.NewAssistantHandler(assistantService, logger),
		ExportHandler:       handler.NewExportHandler(exportService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	}
	if uploader != nil {
		uploadService := service.NewUploadService(uploader, cfg.UploadMaxSizeMB, logger)
		deps.UploadHandler = handler.NewUploadHandler(uploadService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("server started")

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
