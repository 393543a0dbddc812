package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/config"
	"alfredoptarigan/cv-project/internal/logging"
	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/server"
	"alfredoptarigan/cv-project/internal/services"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	db, err := config.InitDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	if err := config.SeedAdmin(db, cfg, logger); err != nil {
		logger.Fatal("❌ Failed to seed admin user", zap.Error(err))
	}

	cvRepo := repositories.NewCVRepository(db)
	logRepo := repositories.NewRequestLogRepository(db)
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	logger.Info("✅ Repositories initialized successfully")

	storageService := services.NewStorageService(cfg.Storage.ArtifactPath)
	if err := storageService.EnsureDir(); err != nil {
		logger.Fatal("❌ Failed to create artifact directory", zap.Error(err))
	}
	renderer := services.NewPDFRenderer()
	pdfParser := services.NewPDFParserService()
	mailer := services.NewMailer(cfg.Mail, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Translation and search both degrade when Gemini is not configured.
	var generator services.TextGenerator
	var index services.CVIndex
	geminiService, err := services.NewGeminiService(cfg.Gemini, logger)
	switch {
	case errors.Is(err, services.ErrNotConfigured):
		logger.Warn("⚠️ GEMINI_API_KEY not set, translation and search are disabled")
	case err != nil:
		logger.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
	default:
		generator = geminiService
		logger.Info("✅ Gemini AI initialized successfully")
		index = initSearchIndex(ctx, cfg, geminiService, logger)
	}

	translations := services.NewTranslationService(
		generator,
		services.NewTranslationCache(cfg.Translation.CacheTTL),
		logger,
	)

	worker := services.NewWorker(taskRepo, services.WorkerOptions{
		Concurrency:  cfg.Worker.Concurrency,
		QueueSize:    cfg.Worker.QueueSize,
		PollInterval: cfg.Worker.PollInterval,
		StaleAfter:   cfg.Worker.StaleAfter,
	}, logger)

	runner := services.NewTaskRunner(
		cvRepo,
		logRepo,
		mailer,
		renderer,
		pdfParser,
		storageService,
		index,
		services.TaskSettings{
			SiteURL:          cfg.Report.SiteURL,
			ReportRecipient:  cfg.Report.Recipient,
			LongTaskDuration: cfg.Worker.LongTaskDuration,
		},
		logger,
	)
	runner.RegisterAll(worker)

	if cfg.Worker.Enabled {
		worker.Start(ctx)
	} else {
		logger.Warn("⚠️ Worker disabled, tasks will be reported as unavailable")
	}

	scheduler := services.NewScheduler(worker, logger)
	if err := scheduler.Add(cfg.Report.Schedule, services.JobSendDailyReport); err != nil {
		logger.Fatal("❌ Invalid REPORT_SCHEDULE", zap.Error(err))
	}
	if err := scheduler.Add(cfg.Report.CleanupSchedule, services.JobCleanupOldLogs); err != nil {
		logger.Fatal("❌ Invalid CLEANUP_SCHEDULE", zap.Error(err))
	}
	scheduler.Start()

	app := server.NewRouter(server.Dependencies{
		Config:       cfg,
		Logger:       logger,
		CVRepo:       cvRepo,
		LogRepo:      logRepo,
		UserRepo:     userRepo,
		TaskRepo:     taskRepo,
		Queue:        worker,
		Translations: translations,
		Index:        index,
		Renderer:     renderer,
		AccessLog:    true,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("🛑 Shutting down server...")
		scheduler.Stop()
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			logger.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

// initSearchIndex returns nil when Qdrant is not configured or unreachable.
func initSearchIndex(ctx context.Context, cfg *config.Config, embedder services.Embedder, logger *zap.Logger) services.CVIndex {
	if cfg.Qdrant.URL == "" {
		logger.Info("QDRANT_URL not set, CV search disabled")
		return nil
	}

	store, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, logger)
	if err != nil {
		logger.Warn("⚠️ Failed to initialize Qdrant, CV search disabled", zap.Error(err))
		return nil
	}
	if err := store.InitCollection(ctx); err != nil {
		logger.Warn("⚠️ Failed to initialize Qdrant collection, CV search disabled", zap.Error(err))
		return nil
	}

	logger.Info("✅ Qdrant initialized successfully")
	return services.NewCVIndex(store, embedder)
}
