package main

import (
	"context"
	"log"
	"os"
	"time"

	_ "userhub/api/swagger" // swagger docs
	"userhub/internal/database"
	"userhub/internal/handler"
	"userhub/internal/middleware"
	"userhub/internal/repository"
	"userhub/internal/service"
	"userhub/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           UserHub API
// @version         1.0
// @description     Identity, RBAC claims and credit ledger API.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "userhub"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub for credit ledger events
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	txManager := repository.NewTransactionManager(db)

	// Periodically purge expired refresh tokens
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := userRepo.DeleteExpiredRefreshTokens(context.Background(), time.Now()); err != nil {
				log.Printf("refresh token cleanup failed: %v", err)
			}
		}
	}()

	claimsService := service.NewClaimsService(assignmentRepo)
	userService := service.NewUserService(userRepo, claimsService, txManager)
	creditService := service.NewCreditService(creditRepo, serviceRepo, wsHub)
	roleService := service.NewRoleService(roleRepo, assignmentRepo, userRepo)
	catalogService := service.NewCatalogService(serviceRepo, assignmentRepo, userRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	creditHandler := handler.NewCreditHandler(creditService)
	roleHandler := handler.NewRoleHandler(roleService)
	serviceHandler := handler.NewServiceHandler(catalogService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	creditHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	serviceHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
