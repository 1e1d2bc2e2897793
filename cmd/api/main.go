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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/rgpv-tpo/placement-api/internal/config"
	"github.com/rgpv-tpo/placement-api/internal/database"
	"github.com/rgpv-tpo/placement-api/internal/handler"
	"github.com/rgpv-tpo/placement-api/internal/middleware"
	"github.com/rgpv-tpo/placement-api/internal/models"
	"github.com/rgpv-tpo/placement-api/internal/repository"
	"github.com/rgpv-tpo/placement-api/internal/router"
	"github.com/rgpv-tpo/placement-api/internal/service"
	cloud "github.com/rgpv-tpo/placement-api/pkg/cloudinary"
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
		&models.Student{},
		&models.Caf{},
		&models.CafCertification{},
		&models.CafInternship{},
		&models.InternshipRecord{},
		&models.PlacementDrive{},
		&models.MockInterviewResult{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, drive catalog caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, workflow events stay node-local")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	cafRepo := repository.NewCafRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	adminStudentRepo := repository.NewAdminStudentRepository(db)
	driveRepo := repository.NewPlacementDriveRepository(db)
	internshipRepo := repository.NewInternshipRepository(db)
	mockResultRepo := repository.NewMockResultRepository(db)

	rootCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	eventStream := service.NewEventStreamService(natsConn, cfg.EventChannel, logger)
	eventStream.Start(rootCtx)

	workflowService := service.NewCafWorkflowService(cafRepo, studentRepo, validate, eventStream, cfg.EditableFields, logger)
	notificationService := service.NewNotificationService(cafRepo, workflowService, logger)
	adminStudentService := service.NewAdminStudentService(adminStudentRepo, validate, logger)
	placementService := service.NewPlacementService(driveRepo, workflowService, redisClient, cfg.DriveCacheTTL, validate, logger)
	internshipService := service.NewInternshipService(internshipRepo, workflowService, validate, logger)
	mockResultService := service.NewMockResultService(mockResultRepo, cfg.ImportMaxMB, logger)
	documentService := service.NewDocumentService(uploader, cfg.UploadMaxMB, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		CafHandler:           handler.NewCafHandler(workflowService, logger),
		InternshipHandler:    handler.NewInternshipHandler(internshipService, logger),
		PlacementHandler:     handler.NewPlacementHandler(placementService, logger),
		MockInterviewHandler: handler.NewMockInterviewHandler(mockResultService, workflowService, logger),
		DocumentHandler:      handler.NewDocumentHandler(documentService, logger),
		NotificationHandler:  handler.NewAdminNotificationHandler(notificationService, logger),
		AdminStudentHandler:  handler.NewAdminStudentHandler(adminStudentService, logger),
		AdminDriveHandler:    handler.NewAdminDriveHandler(placementService, logger),
		AdminMockHandler:     handler.NewAdminMockHandler(mockResultService, logger),
		EventsHandler:        handler.NewEventsHandler(eventStream, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

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
