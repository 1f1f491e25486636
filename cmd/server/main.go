package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/config"
	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/database"
	"github.com/minase/task-backend/internal/handlers"
	"github.com/minase/task-backend/internal/middleware"
	"github.com/minase/task-backend/internal/repository"
	"github.com/minase/task-backend/internal/services"
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

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	tagRepo := repository.NewTagRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, groupRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	taskService := services.NewTaskService(taskRepo, statusRepo, categoryRepo, tagRepo, userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	statusHandler := handlers.NewStatusHandler(statusRepo)
	tagHandler := handlers.NewTagHandler(tagRepo)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task backend is running",
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

		// User management (staff only)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireStaff())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.PATCH("/:id", userHandler.PatchUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		// Group routes (authenticated)
		groups := api.Group("/groups")
		groups.Use(middleware.RequireAuth())
		{
			groups.GET("", groupHandler.ListGroups)
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("/:id", groupHandler.GetGroup)
			groups.PUT("/:id", groupHandler.UpdateGroup)
			groups.PATCH("/:id", groupHandler.UpdateGroup)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
		}

		// Category routes (authenticated)
		categories := api.Group("/categories")
		categories.Use(middleware.RequireAuth())
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.PUT("/:id", categoryHandler.UpdateCategory)
			categories.PATCH("/:id", categoryHandler.PatchCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		// Status routes (authenticated)
		statuses := api.Group("/statuses")
		statuses.Use(middleware.RequireAuth())
		{
			statuses.GET("", statusHandler.ListStatuses)
			statuses.POST("", statusHandler.CreateStatus)
			statuses.GET("/:id", statusHandler.GetStatus)
			statuses.PUT("/:id", statusHandler.UpdateStatus)
			statuses.PATCH("/:id", statusHandler.UpdateStatus)
			statuses.DELETE("/:id", statusHandler.DeleteStatus)
		}

		// Tag routes (authenticated)
		tags := api.Group("/tags")
		tags.Use(middleware.RequireAuth())
		{
			tags.GET("", tagHandler.ListTags)
			tags.POST("", tagHandler.CreateTag)
			tags.GET("/:id", tagHandler.GetTag)
			tags.PUT("/:id", tagHandler.UpdateTag)
			tags.PATCH("/:id", tagHandler.UpdateTag)
			tags.DELETE("/:id", tagHandler.DeleteTag)
		}

		// Task routes (authenticated, detail routes visibility-checked)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskVisible(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.RequireTaskVisible(), taskHandler.UpdateTask)
			tasks.PATCH("/:id", middleware.RequireTaskVisible(), taskHandler.PatchTask)
			tasks.DELETE("/:id", middleware.RequireTaskVisible(), taskHandler.DeleteTask)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
