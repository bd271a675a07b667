package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/teraonavi/navi-admin/internal/credentials"
	"github.com/teraonavi/navi-admin/internal/database"
	"github.com/teraonavi/navi-admin/internal/handlers"
	"github.com/teraonavi/navi-admin/internal/middleware"
	"github.com/teraonavi/navi-admin/internal/objectstore"
	"github.com/teraonavi/navi-admin/internal/utils"

	_ "github.com/teraonavi/navi-admin/docs/api" // Swagger docs
)

// @title Navi Admin API
// @version 1.0.0
// @description Multi-tenant administration service: companies, users, applications, manuals, and machine credentials
// @termsOfService http://swagger.io/terms/

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name navi_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations and seed the fixed role set
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedRoles(db); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}

	// Credential store
	credStore, err := credentials.NewDynamoStore(cfg)
	if err != nil {
		log.Fatalf("Failed to build credential store: %v", err)
	}
	creds := credentials.NewManager(credStore, cfg.DynamoTimeout)

	// Object storage
	store, err := objectstore.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build object store client: %v", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		log.Printf("Object store bucket check failed: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("navi_admin")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	api.Use(middleware.SessionAuth(cfg))

	// Create handlers
	authHandler := &handlers.AuthHandler{Cfg: cfg, DB: db, Creds: creds}
	companyHandler := &handlers.CompanyHandler{DB: db, Creds: creds}
	userHandler := &handlers.UserHandler{DB: db}
	appHandler := &handlers.ApplicationHandler{DB: db}
	manualHandler := &handlers.ManualHandler{DB: db, Store: store}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db, Creds: creds, Store: store}

	// Health
	api.Get("/health", healthHandler.Check)

	// Auth
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)
	api.Post("/admin/login", authHandler.AdminLogin)
	api.Post("/auth/client", authHandler.VerifyClient)

	// Company management (platform superuser)
	admin := api.Group("/admin")
	admin.Get("/companies", companyHandler.List)
	admin.Post("/companies", companyHandler.Create)
	admin.Get("/companies/:id", companyHandler.Get)
	admin.Put("/companies/:id", companyHandler.Update)
	admin.Delete("/companies/:id", companyHandler.Delete)
	admin.Post("/companies/:id/restore", companyHandler.Restore)
	admin.Post("/companies/:id/credentials", companyHandler.IssueCredential)
	admin.Get("/companies/:id/credentials", companyHandler.ListCredentials)
	admin.Delete("/companies/:id/credentials/:clientID", companyHandler.RevokeCredential)

	// Cross-tenant user administration (platform superuser)
	admin.Get("/users", userHandler.AdminList)
	admin.Post("/users", userHandler.AdminCreate)
	admin.Get("/users/:id", userHandler.AdminGet)
	admin.Put("/users/:id", userHandler.AdminUpdate)
	admin.Delete("/users/:id", userHandler.AdminDelete)

	// Tenant users
	api.Get("/users", userHandler.List)
	api.Post("/users", userHandler.Create)
	api.Get("/users/:id", userHandler.Get)
	api.Put("/users/:id", userHandler.Update)
	api.Delete("/users/:id", userHandler.Delete)

	// Tenant applications and manuals
	api.Get("/applications", appHandler.List)
	api.Post("/applications", appHandler.Create)
	api.Get("/applications/:id", appHandler.Get)
	api.Put("/applications/:id", appHandler.Update)
	api.Delete("/applications/:id", appHandler.Delete)
	api.Get("/applications/:id/manuals", manualHandler.List)
	api.Post("/applications/:id/manuals", manualHandler.Create)
	api.Get("/manuals/:id", manualHandler.Get)
	api.Put("/manuals/:id", manualHandler.Update)
	api.Delete("/manuals/:id", manualHandler.Delete)
	api.Get("/manuals/:id/download", manualHandler.Download)
	api.Get("/manuals/:id/url", manualHandler.PresignedURL)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
