package server

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/config"
	"alfredoptarigan/cv-project/internal/handlers"
	"alfredoptarigan/cv-project/internal/middleware"
	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/services"
	"alfredoptarigan/cv-project/internal/views"
)

// Dependencies is everything the HTTP layer needs. Index may be nil.
type Dependencies struct {
	Config       *config.Config
	Logger       *zap.Logger
	CVRepo       repositories.CVRepository
	LogRepo      repositories.RequestLogRepository
	UserRepo     repositories.UserRepository
	TaskRepo     repositories.TaskRepository
	Queue        services.JobQueue
	Translations services.TranslationService
	Index        services.CVIndex
	Renderer     services.PDFRenderer
	AccessLog    bool
}

func NewRouter(deps Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		AppName:      "CV Project",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Views:        views.NewEngine(false),
		ErrorHandler: customErrorHandler,
	})

	// outermost, so failures of everything below are still recorded
	auditor := middleware.NewRequestAuditor(deps.LogRepo, deps.Logger).
		WithWriteTimeout(cfg.Server.AuditWriteTimeout)
	app.Use(middleware.RequestAudit(auditor))

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cookieKey(cfg.Server.SecretKey),
	}))

	store := session.New(session.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:cv_session",
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieSecure:   !cfg.IsDevelopment(),
	})
	app.Use(middleware.InjectUser(store, deps.UserRepo, deps.Logger))
	app.Use(middleware.Metrics())

	cvHandler := handlers.NewCVHandler(deps.CVRepo, deps.Queue, deps.Translations, deps.Index, deps.Logger)
	pageHandler := handlers.NewPageHandler(deps.CVRepo, deps.LogRepo, deps.Renderer, deps.Logger)
	logHandler := handlers.NewLogHandler(deps.LogRepo)
	taskHandler := handlers.NewTaskHandler(deps.TaskRepo, deps.CVRepo, deps.Queue, cfg.Report.Recipient, deps.Logger)
	translationHandler := handlers.NewTranslationHandler(deps.CVRepo, deps.Translations)
	authHandler := handlers.NewAuthHandler(deps.UserRepo, store, deps.Logger)

	app.Get("/health", handlers.HandleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Pages
	app.Get("/", pageHandler.HandleCVList)
	app.Get("/cv/:id", pageHandler.HandleCVDetail)
	app.Get("/cv/:id/pdf", pageHandler.HandlePDF)
	app.Get("/logs", pageHandler.HandleRecentLogs)
	app.Get("/logs/all", pageHandler.HandleAllLogs)

	// Auth
	auth := app.Group("/auth")
	auth.Post("/login", authHandler.HandleLogin)
	auth.Post("/logout", authHandler.HandleLogout)
	auth.Get("/me", middleware.RequireAuth(), authHandler.HandleMe)
	auth.Delete("/users/:id", middleware.RequireAdmin(), authHandler.HandleDeleteUser)

	api := app.Group("/api")

	// CV API, class-based variant
	api.Get("/cvs/search", cvHandler.HandleSearch)
	api.Get("/cvs", cvHandler.HandleList)
	api.Post("/cvs", cvHandler.HandleCreate)
	api.Get("/cvs/:id", cvHandler.HandleGet)
	api.Put("/cvs/:id", cvHandler.HandleUpdate)
	api.Patch("/cvs/:id", cvHandler.HandlePatch)
	api.Delete("/cvs/:id", cvHandler.HandleDelete)

	// CV API, function-based variant (no PATCH)
	v1 := api.Group("/v1")
	v1.Add(fiber.MethodGet, "/cvs", cvHandler.HandleCollection)
	v1.Add(fiber.MethodPost, "/cvs", cvHandler.HandleCollection)
	v1.Add(fiber.MethodGet, "/cvs/:id", cvHandler.HandleItem)
	v1.Add(fiber.MethodPut, "/cvs/:id", cvHandler.HandleItem)
	v1.Add(fiber.MethodDelete, "/cvs/:id", cvHandler.HandleItem)

	api.Get("/logs", logHandler.HandleListLogs)

	api.Get("/tasks/trigger", taskHandler.HandleTrigger)
	api.Get("/tasks/:id", taskHandler.HandleGetTask)

	api.Post("/translate", translationHandler.HandleTranslate)
	api.Get("/translate/languages", translationHandler.HandleLanguages)

	return app
}

// cookieKey derives the 32-byte AES key encryptcookie expects from SECRET_KEY.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
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
