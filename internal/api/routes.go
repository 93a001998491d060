package api

import (
	"net/http"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/service"
	"fitcoach/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the full HTTP surface under /api.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	scheduleService service.ScheduleService,
	subscriptionService service.SubscriptionService,
	workoutService service.WorkoutService,
	mealPlanService service.MealPlanService,
	progressService service.ProgressService,
	chatService service.ChatService,
	settingsService service.SettingsService,
	fileStorage storage.FileStorage,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	scheduleHandler := NewScheduleHandler(scheduleService)
	subscriptionHandler := NewSubscriptionHandler(subscriptionService, fileStorage)
	workoutHandler := NewWorkoutHandler(workoutService)
	mealPlanHandler := NewMealPlanHandler(mealPlanService)
	progressHandler := NewProgressHandler(progressService)
	chatHandler := NewChatHandler(chatService)
	settingsHandler := NewSettingsHandler(settingsService)
	mediaHandler := NewMediaHandler(fileStorage)

	authMiddleware := AuthMiddleware(jwtSecret)
	staffOnly := RoleMiddleware(domain.RoleAdmin, domain.RoleTrainer)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/verify-otp", authHandler.VerifyOTP)
			authGroup.POST("/resend-otp", authHandler.ResendOTP)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		// --- Profile & Dashboard ---
		usersGroup := protected.Group("/users")
		{
			usersGroup.GET("/me", userHandler.GetMe)
			usersGroup.PUT("/me", userHandler.UpdateMe)
			usersGroup.GET("/home", userHandler.GetHome)

			usersGroup.GET("", adminOnly, userHandler.ListUsers)
			usersGroup.GET("/:id", staffOnly, userHandler.GetUser)
			usersGroup.PUT("/:id", adminOnly, userHandler.UpdateUser)
			usersGroup.PUT("/:id/block", adminOnly, userHandler.SetBlocked)
			usersGroup.PUT("/:id/trainer", adminOnly, userHandler.AssignTrainer)
			usersGroup.DELETE("/:id", adminOnly, userHandler.DeleteUser)
		}

		// --- Admin Dashboard ---
		adminGroup := protected.Group("/admin")
		{
			adminGroup.GET("/stats", adminOnly, userHandler.GetAdminOverview)
		}

		// --- Schedule ---
		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.GET("/my", scheduleHandler.GetMySchedule)
			scheduleGroup.GET("/admin/daily", adminOnly, scheduleHandler.GetDaily)
			scheduleGroup.POST("", adminOnly, scheduleHandler.Assign)
			scheduleGroup.POST("/sync-global", adminOnly, scheduleHandler.Sync)
			scheduleGroup.DELETE("/:id", adminOnly, scheduleHandler.Delete)
		}

		// --- Workouts ---
		workoutsGroup := protected.Group("/workouts")
		{
			workoutsGroup.GET("/my", workoutHandler.ListMine)
			workoutsGroup.GET("", staffOnly, workoutHandler.List)
			workoutsGroup.GET("/:id", workoutHandler.Get)
			workoutsGroup.POST("", staffOnly, workoutHandler.Create)
			workoutsGroup.PUT("/:id", staffOnly, workoutHandler.Update)
			workoutsGroup.DELETE("/:id", staffOnly, workoutHandler.Delete)
		}

		// --- Meal Plans ---
		mealPlansGroup := protected.Group("/meal-plans")
		{
			mealPlansGroup.GET("/my", mealPlanHandler.ListMine)
			mealPlansGroup.GET("", staffOnly, mealPlanHandler.List)
			mealPlansGroup.GET("/:id", mealPlanHandler.Get)
			mealPlansGroup.POST("", staffOnly, mealPlanHandler.Create)
			mealPlansGroup.PUT("/:id", staffOnly, mealPlanHandler.Update)
			mealPlansGroup.DELETE("/:id", staffOnly, mealPlanHandler.Delete)
		}

		// --- Subscription & Payments ---
		paymentsGroup := protected.Group("/payments")
		{
			paymentsGroup.GET("/config", subscriptionHandler.GetPaymentConfig)
			paymentsGroup.POST("", subscriptionHandler.SubmitPayment)
			paymentsGroup.GET("/history", subscriptionHandler.GetHistory)

			paymentsGroup.GET("/pending", adminOnly, subscriptionHandler.GetPending)
			paymentsGroup.PUT("/:id/approve", adminOnly, subscriptionHandler.Approve)
			paymentsGroup.PUT("/:id/reject", adminOnly, subscriptionHandler.Reject)
			paymentsGroup.GET("/stats", adminOnly, subscriptionHandler.GetStats)
			paymentsGroup.GET("/users", adminOnly, subscriptionHandler.GetPaidUsers)
		}

		// --- Progress & Daily Logs ---
		progressGroup := protected.Group("/progress")
		{
			progressGroup.POST("", progressHandler.AddEntry)
			progressGroup.GET("", progressHandler.GetMyHistory)
			progressGroup.GET("/user/:id", staffOnly, progressHandler.GetUserHistory)
			progressGroup.PUT("/:id/feedback", staffOnly, progressHandler.SetFeedback)

			progressGroup.POST("/daily-log", progressHandler.UpdateDailyLog)
			progressGroup.GET("/daily-log", progressHandler.GetDailyLog)
		}

		// --- Chat ---
		chatGroup := protected.Group("/chats")
		{
			chatGroup.GET("/my", chatHandler.GetMyConversation)
			chatGroup.GET("", staffOnly, chatHandler.ListConversations)
			chatGroup.GET("/with/:userId", staffOnly, chatHandler.GetConversationWith)
			chatGroup.POST("/messages", chatHandler.SendMessage)
		}

		// --- Settings ---
		settingsGroup := protected.Group("/settings")
		settingsGroup.Use(adminOnly)
		{
			settingsGroup.GET("/payment", settingsHandler.GetPaymentSettings)
			settingsGroup.PUT("/payment", settingsHandler.UpdatePaymentSettings)
		}

		// --- Media ---
		mediaGroup := protected.Group("/media")
		{
			mediaGroup.POST("/upload", staffOnly, mediaHandler.Upload)
			mediaGroup.POST("/presign", staffOnly, mediaHandler.PresignUpload)
		}
	}
}
