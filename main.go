package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/medipulse/medipulse-backend/internal/handlers"
	"github.com/medipulse/medipulse-backend/internal/jobs"
	"github.com/medipulse/medipulse-backend/internal/prompts"
	"github.com/medipulse/medipulse-backend/internal/routes"
	"github.com/medipulse/medipulse-backend/internal/services"
	"github.com/medipulse/medipulse-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	// Prompt configuration is validated up front so a missing translation
	// can never fail a turn later.
	resolver, err := prompts.NewResolver()
	if err != nil {
		log.Fatal("Failed to load prompt configuration:", err)
	}
	log.Println("✅ Prompt configuration validated")

	// Session store with TTL-based eviction
	ttl := storage.DefaultSessionTTL
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			log.Fatalf("Invalid SESSION_TTL_MINUTES: %q", v)
		}
		ttl = time.Duration(minutes) * time.Minute
	}
	store := storage.NewMemoryStore(ttl)
	log.Printf("✅ In-memory session store initialized (TTL %v)", ttl)

	// Generation service client
	groqService := services.NewGroqService()
	if groqService.Configured() {
		log.Println("✅ Groq generation service configured")
	} else {
		log.Println("⚠️  GROQ_API_KEY not set - assessment turns will fail")
	}

	// Turn processor
	mode := services.ParseMode(os.Getenv("INTAKE_MODE"))
	chatService := services.NewChatService(store, groqService, resolver, mode)
	log.Printf("✅ Chat service initialized (%s mode)", mode)

	// Start TTL sweeper
	cleanupJob := jobs.NewCleanupJob(store, 5*time.Minute)
	cleanupJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "MediPulse Backend v1.0.0",
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
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// Setup routes
	chatHandler := handlers.NewChatHandler(chatService)
	healthHandler := handlers.NewHealthHandler(store, string(mode), groqService.Configured())
	routes.SetupRoutes(app, chatHandler, healthHandler)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		cleanupJob.Stop()
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 MediPulse Backend starting on port %s", port)
	log.Printf("💬 Intake mode: %s", mode)
	log.Printf("🤖 Generation: %s", generationStatus(groqService))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func generationStatus(g *services.GroqService) string {
	if g.Configured() {
		return "Configured"
	}
	return "Not configured"
}
