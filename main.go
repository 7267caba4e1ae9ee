package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/zoi-aqua/aquabot-backend/database"
	"github.com/zoi-aqua/aquabot-backend/internal/botflows"
	"github.com/zoi-aqua/aquabot-backend/internal/config"
	"github.com/zoi-aqua/aquabot-backend/internal/flow"
	"github.com/zoi-aqua/aquabot-backend/internal/handlers"
	"github.com/zoi-aqua/aquabot-backend/internal/routes"
	"github.com/zoi-aqua/aquabot-backend/internal/services"
	"github.com/zoi-aqua/aquabot-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	// Build the configuration once; missing required credentials are fatal.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize storage
	var store storage.SessionStore
	storageType := "In-Memory"

	if cfg.DatabaseURL != "" {
		log.Println("📦 Connecting to PostgreSQL database...")
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}

		dbStore := storage.NewDatabaseStore(db)
		log.Println("🔄 Running database migrations...")
		if err := dbStore.Migrate(); err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
		log.Println("✅ Database migrations completed!")

		store = dbStore
		storageType = "PostgreSQL Database"
	} else {
		log.Println("⚠️  Using in-memory session storage (sessions do not survive restarts)")
		store = storage.NewMemoryStore()
	}

	// Initialize Twilio transport (nil-safe when credentials are absent)
	twilioService, err := services.NewTwilioService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Twilio service: ", err)
	}
	if twilioService == nil {
		log.Println("⚠️  Twilio credentials not found - outbound messages will be logged only")
	} else {
		log.Println("✅ Twilio service initialized")
	}

	// Collaborators
	backendService := services.NewBackendService(cfg)
	geminiService := services.NewGeminiService(cfg)

	// Register conversation flows and build the engine
	registry := flow.NewRegistry()
	botflows.Register(registry, botflows.Deps{
		Backend:      backendService,
		Gen:          geminiService,
		StoreAddress: cfg.StoreAddress,
		PaymentQRURL: cfg.PaymentQRURL,
	})

	engine := flow.NewEngine(registry, store)
	dispatcher := flow.NewDispatcher(engine)
	whatsappHandler := handlers.NewWhatsAppHandler(dispatcher, twilioService)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "AquaBot Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, whatsappHandler, storageType)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 AquaBot Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType)
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("🏪 Store address: %s", cfg.StoreAddress)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}
