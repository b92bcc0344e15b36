package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sports-match-system/handlers"
	"sports-match-system/middleware"
	"sports-match-system/models"
	"sports-match-system/services"
	"sports-match-system/store"
	"sports-match-system/utils"
	"sports-match-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 2 * 1024 * 1024 * 1024, // 2GB, match videos are large
	})

	// 🔐 GLOBAL: Only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware())
	app.Use(middleware.UserContextMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Match{},
		&models.PlayerStats{},
		&models.AvatarItem{},
		&models.UnlockRecord{},
		&models.Challenge{},
		&models.ChallengeAttempt{},
		&models.Player{},
		&models.Invite{},
		&models.Venue{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	stores := store.NewGorm(db)
	if err := stores.Catalog.SeedCatalog(); err != nil {
		log.Fatal("failed to seed avatar item catalog:", err)
	}

	unlockService := services.NewUnlockService(stores.Catalog, stores.Stats)
	matchService := services.NewMatchService(stores.Matches, stores.Stats, unlockService)
	challengeService := services.NewChallengeService(stores.Challenges, stores.Stats, unlockService)
	playerService := services.NewPlayerService(db, stores.Catalog, stores.Stats, unlockService)
	venueService := services.NewVenueService(db)
	streamService := services.NewUnlockStreamService(stores.Catalog)

	identityServiceURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityServiceURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("SPORTS_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("SPORTS_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	playerSyncWorker := workers.NewPlayerSyncWorker(db, identityServiceURL, "/api/v1/public/profiles", serviceToken)
	playerSyncWorker.Start(ctx)

	analysisWorker := workers.NewAnalysisWorker(stores.Matches, matchService, utils.HTTPClient)
	analysisWorker.Start(ctx)

	avatarWorker := workers.NewAvatarWorker(db, utils.HTTPClient)
	avatarWorker.Start(ctx)

	scheduler, err := services.NewScheduler(stores.Matches)
	if err != nil {
		log.Fatal("failed to create scheduler:", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler:", err)
	}
	defer scheduler.Stop()

	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupChallengeRoutes(app, challengeService)
	handlers.SetupAvatarRoutes(app, unlockService, streamService, avatarWorker)
	handlers.SetupPlayerRoutes(app, playerService)
	handlers.SetupVenueRoutes(app, venueService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Player Sync Worker running")
	log.Println("✅ Analysis Worker running")
	log.Println("✅ Avatar Worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
