package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcoach/backend/internal/api"
	"fitcoach/backend/internal/config"
	"fitcoach/backend/internal/email"
	"fitcoach/backend/internal/repository/mongo"
	"fitcoach/backend/internal/service"
	"fitcoach/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting FitCoach Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	timezone, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Invalid app timezone %q: %v", cfg.App.Timezone, err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongo.EnsureMealPlanIndexes(ctx, appDB.Collection("meal_plans"))
		mongo.EnsureScheduleIndexes(ctx, appDB.Collection("schedules"))
		mongo.EnsurePaymentIndexes(ctx, appDB.Collection("payments"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("progress"))
		mongo.EnsureDailyLogIndexes(ctx, appDB.Collection("daily_logs"))
		mongo.EnsureChatIndexes(ctx, appDB.Collection("chats"))
		mongo.EnsureSettingsIndexes(ctx, appDB.Collection("settings"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Mailer ---
	mailer := email.NewMailer(cfg.Email)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	mealPlanRepo := mongo.NewMongoMealPlanRepository(appDB)
	scheduleRepo := mongo.NewMongoScheduleRepository(appDB)
	paymentRepo := mongo.NewMongoPaymentRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	dailyLogRepo := mongo.NewMongoDailyLogRepository(appDB)
	chatRepo := mongo.NewMongoChatRepository(appDB)
	settingsRepo := mongo.NewMongoSettingsRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	scheduleService := service.NewScheduleService(scheduleRepo, workoutRepo, mealPlanRepo, userRepo, timezone)
	subscriptionService := service.NewSubscriptionService(
		paymentRepo, userRepo, settingsRepo, mailer, timezone,
		cfg.App.PaymentAmount, cfg.App.PaymentCurrency,
	)
	authService := service.NewAuthService(userRepo, subscriptionService, mailer, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, progressRepo, dailyLogRepo, scheduleService, subscriptionService, timezone)
	workoutService := service.NewWorkoutService(workoutRepo, scheduleService)
	mealPlanService := service.NewMealPlanService(mealPlanRepo, scheduleService)
	progressService := service.NewProgressService(progressRepo, dailyLogRepo, userRepo)
	chatService := service.NewChatService(chatRepo, userRepo)
	settingsService := service.NewSettingsService(settingsRepo, cfg.App.PaymentAmount, cfg.App.PaymentCurrency)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		userService,
		scheduleService,
		subscriptionService,
		workoutService,
		mealPlanService,
		progressService,
		chatService,
		settingsService,
		fileStorage,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
