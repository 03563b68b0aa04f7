package main

import (
	"log"
	"os"

	_ "bhms-backend/api/swagger" // swagger docs
	"bhms-backend/internal/database"
	"bhms-backend/internal/gateway"
	"bhms-backend/internal/handler"
	"bhms-backend/internal/middleware"
	"bhms-backend/internal/notifier"
	"bhms-backend/internal/repository"
	"bhms-backend/internal/service"
	"bhms-backend/internal/storage"
	"bhms-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Boarding House Management API
// @version         1.0
// @description     Room, tenant and billing management for a boarding house, including the full invoice lifecycle and payment reconciliation.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Outbound collaborators
	mailer := notifier.NewSMTPNotifier(notifier.SMTPConfig{
		Host:     getenv("SMTP_HOST", "localhost"),
		Port:     getenv("SMTP_PORT", "587"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getenv("SMTP_FROM", "billing@localhost"),
	})

	uploadDir := getenv("UPLOAD_DIR", "uploads")
	publicBaseURL := getenv("PUBLIC_BASE_URL", "http://localhost:8080")
	proofs, err := storage.NewDiskStorage(uploadDir, publicBaseURL+"/uploads")
	if err != nil {
		log.Fatalf("Proof storage init failed: %v", err)
	}

	gw := gateway.NewMidtransClient(
		os.Getenv("MIDTRANS_SERVER_KEY"),
		os.Getenv("MIDTRANS_PRODUCTION") == "true",
	)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	contractRepo := repository.NewContractRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	userService := service.NewUserService(userRepo)
	roomService := service.NewRoomService(roomRepo, serviceRepo, auditRepo)
	catalogService := service.NewCatalogService(serviceRepo)
	tenantService := service.NewTenantService(tenantRepo, contractRepo, roomRepo, auditRepo, txManager)
	previewService := service.NewPreviewService(roomRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, roomRepo, auditRepo, txManager, mailer, wsHub, publicBaseURL)
	paymentService := service.NewPaymentService(paymentRepo, invoiceRepo, roomRepo, auditRepo, txManager, proofs, gw, wsHub)
	auditService := service.NewAuditService(auditRepo)
	statsService := service.NewStatsService(statsRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roomHandler := handler.NewRoomHandler(roomService, previewService, invoiceService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService, invoiceService)
	auditHandler := handler.NewAuditHandler(auditService)
	statsHandler := handler.NewStatsHandler(statsService)

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

	// Uploaded transfer proofs
	router.Static("/uploads", uploadDir)

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	roomHandler.RegisterRoutes(router.Group(""))
	catalogHandler.RegisterRoutes(router.Group(""))
	tenantHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	statsHandler.RegisterRoutes(router.Group(""))

	port := getenv("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
