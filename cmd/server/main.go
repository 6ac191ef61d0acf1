package main

import (
	"log"
	"strconv"
	"strings"

	"github.com/coursehub/course-platform-api/internal/config"
	"github.com/coursehub/course-platform-api/internal/constants"
	"github.com/coursehub/course-platform-api/internal/database"
	"github.com/coursehub/course-platform-api/internal/handlers"
	"github.com/coursehub/course-platform-api/internal/middleware"
	"github.com/coursehub/course-platform-api/internal/permissions"
	"github.com/coursehub/course-platform-api/internal/repository"
	"github.com/coursehub/course-platform-api/internal/services"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Supplemental indexes use the postgres catalog to check for existence
	if cfg.DBDriver == "postgres" {
		if err := database.MigrateDatabase(database.GetDB()); err != nil {
			log.Fatalf("Failed to add database indexes: %v", err)
		}
	}

	// Initialize the permission evaluator
	perms, err := permissions.NewService(cfg.PolicyPath)
	if err != nil {
		log.Fatalf("Failed to initialize permission service: %v", err)
	}
	for _, raw := range strings.Split(cfg.AdminUsers, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Fatalf("Invalid admin user id %q: %v", raw, err)
		}
		if err := perms.GrantRole(userID, permissions.AdminRole); err != nil {
			log.Fatalf("Failed to grant admin role to user %d: %v", userID, err)
		}
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(database.GetDB())
	orgRepo := repository.NewOrganizationRepository(database.GetDB())

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, perms, services.SystemClock())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService, userService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Course Platform API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Organization routes
		orgs := api.Group("/organizations")
		{
			// World-readable listing and detail views
			orgs.GET("", middleware.LoadSessionUser(), orgHandler.ListOrganizations)
			orgs.GET("/:slug", middleware.LoadSessionUser(), orgHandler.GetOrganization)

			// Everything else requires authentication
			orgs.POST("", middleware.RequireAuth(), orgHandler.CreateOrganization)
			orgs.PUT("", middleware.RequireAuth(), orgHandler.UpdateOrganization)
			orgs.DELETE("/:slug", middleware.RequireAuth(), orgHandler.DeleteOrganization)

			orgs.GET("/:slug/members", middleware.RequireAuth(), orgHandler.GetMembers)
			orgs.POST("/:slug/members", middleware.RequireAuth(), orgHandler.AddMember)
			orgs.DELETE("/:slug/members", middleware.RequireAuth(), orgHandler.RemoveMember)
			orgs.PUT("/members", middleware.RequireAuth(), orgHandler.UpdateMember)
			orgs.GET("/:slug/member", middleware.RequireAuth(), orgHandler.GetMember)
			orgs.GET("/:slug/member/status", middleware.RequireAuth(), orgHandler.GetMemberStatus)
		}

		// Membership listing for a user
		api.GET("/memberships", middleware.RequireAuth(), orgHandler.GetUserMemberships)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
