package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catering-backend/cart"
	"catering-backend/catalog"
	"catering-backend/config"
	"catering-backend/database"
	"catering-backend/firebase"
	"catering-backend/middleware"
	"catering-backend/planner"
	"catering-backend/routes"
	"catering-backend/storage"
	"catering-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const cartRetention = 30 * 24 * time.Hour

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		log.Fatal("Environment validation failed: ", err)
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(db); err != nil {
		log.Printf("Warning: Could not create default admin: %v", err)
	}

	if err := database.SeedCategories(db); err != nil {
		log.Printf("Warning: Could not seed categories: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	//firebase init
	firebase.Init()

	// The live menu comes from Firestore. Without a project the server runs on
	// an in-memory menu so the storefront still works locally.
	var repo interface {
		catalog.Repository
		catalog.Source
	}
	if os.Getenv("FIREBASE_PROJECT_ID") != "" {
		fs, err := firebase.NewFirestoreCatalog(ctx, config.GetEnv("MENU_COLLECTION", "menu"))
		if err != nil {
			log.Fatal("Failed to open menu collection:", err)
		}
		defer fs.Close()
		repo = fs
	} else {
		log.Println("WARNING: FIREBASE_PROJECT_ID not set, using an in-memory menu")
		repo = catalog.NewMemoryRepository()
	}

	menu := catalog.New()
	go menu.Run(ctx, repo)

	var storageClient firebase.StorageClient
	switch backend := config.GetEnv("STORAGE_BACKEND", "firebase"); backend {
	case "r2":
		r2, err := storage.NewR2Client(ctx)
		if err != nil {
			log.Fatal("Failed to configure R2 storage:", err)
		}
		storageClient = r2
	case "firebase":
		storageClient = firebase.NewStorageClient()
	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q", backend)
	}

	slots := database.NewSlotStore(db)
	jobs := utils.NewJobStore(time.Hour)

	var plans *planner.Planner
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		gemini := planner.NewGeminiClient(apiKey,
			config.GetEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			config.GetEnvDuration("PLAN_TIMEOUT", 60*time.Second))
		plans = planner.New(gemini)
	}

	go housekeeping(ctx, slots, jobs)

	// Setup Gin router
	r := gin.Default()

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	// CORS configuration - filter out empty strings from AllowOrigins
	origins := []string{os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL")}
	var filteredOrigins []string
	for _, o := range origins {
		if o != "" {
			filteredOrigins = append(filteredOrigins, o)
		}
	}
	if len(filteredOrigins) == 0 {
		filteredOrigins = []string{"http://localhost:3000"}
		log.Println("WARNING: No CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     filteredOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.CartSessionHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.CartSessionHeader},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:             db,
		Storage:        storageClient,
		Repo:           repo,
		Catalog:        menu,
		Registry:       cart.NewRegistry(slots),
		Planner:        plans,
		Jobs:           jobs,
		LoginLimiter:   middleware.NewRateLimiter(5, time.Minute),
		PlanLimiter:    middleware.NewRateLimiter(config.GetEnvInt("PLAN_RATE_LIMIT", 5), time.Minute),
		Currency:       config.GetEnv("CURRENCY_SYMBOL", "$"),
		WhatsAppNumber: os.Getenv("WHATSAPP_NUMBER"),
		NotifyEmail:    os.Getenv("ORDER_NOTIFY_EMAIL"),
	})

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Println("Database connection closed")
		}
	}

	log.Println("Server exited gracefully")
}

// housekeeping drops abandoned carts and finished import jobs.
func housekeeping(ctx context.Context, slots *database.SlotStore, jobs *utils.JobStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := slots.PurgeBefore(time.Now().Add(-cartRetention))
			if err != nil {
				log.Printf("Warning: cart purge failed: %v", err)
			} else if n > 0 {
				log.Printf("Purged %d abandoned carts", n)
			}
			jobs.CleanupOldJobs()
		}
	}
}
