package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/celiacapp/celiac-tracker-service/internal/config"
	"github.com/celiacapp/celiac-tracker-service/internal/handler"
	"github.com/celiacapp/celiac-tracker-service/internal/middleware"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
)

// Handlers bundles the HTTP handlers the server exposes
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Receipt *handler.ReceiptHandler
	Medical *handler.MedicalHandler
	Tax     *handler.TaxHandler
}

// Server represents the HTTP server for the tracker service
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	handlers    Handlers
	authService service.AuthService
	config      *config.Config
}

// NewServer creates and configures a new server instance
func NewServer(cfg *config.Config, handlers Handlers, authService service.AuthService) *Server {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestResponseLogger(middleware.LoggerConfig{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	}))

	server := &Server{
		router:      router,
		handlers:    handlers,
		authService: authService,
		config:      cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	server.setupRoutes()

	return server
}

// GetRouter returns the gin router instance
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// API documentation endpoints
	// Access the Swagger UI at http://localhost:8080/api-docs/index.html
	swaggerHandler := ginSwagger.WrapHandler(swaggerFiles.Handler)
	s.router.GET("/api-docs/*any", swaggerHandler)

	s.router.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})

	v1 := s.router.Group("/v1")

	// Public auth endpoints
	auth := v1.Group("/auth")
	{
		auth.POST("/register", s.handlers.Auth.Register)
		auth.POST("/login", s.handlers.Auth.Login)
		auth.POST("/refresh", s.handlers.Auth.RefreshToken)
	}

	// Everything else requires a valid access token
	authenticated := v1.Group("")
	authenticated.Use(middleware.AuthMiddleware(s.authService))

	authenticated.GET("/auth/me", s.handlers.Auth.Me)

	products := authenticated.Group("/products")
	{
		products.POST("", s.handlers.Product.CreateProduct)
		products.GET("", s.handlers.Product.ListProducts)
		products.GET("/categories/list", s.handlers.Product.ListCategories)
		products.GET("/:id", s.handlers.Product.GetProduct)
		products.PUT("/:id", s.handlers.Product.UpdateProduct)
		products.DELETE("/:id", s.handlers.Product.DeleteProduct)
	}

	receipts := authenticated.Group("/receipts")
	{
		receipts.POST("", s.handlers.Receipt.CreateReceipt)
		receipts.GET("", s.handlers.Receipt.ListReceipts)
		receipts.POST("/recalculate", s.handlers.Receipt.RecalculateTotals)
		receipts.GET("/stats/monthly", s.handlers.Receipt.GetMonthlyStats)
		receipts.GET("/:id", s.handlers.Receipt.GetReceipt)
		receipts.PUT("/:id", s.handlers.Receipt.UpdateReceipt)
		receipts.DELETE("/:id", s.handlers.Receipt.DeleteReceipt)
		receipts.POST("/:id/image", s.handlers.Receipt.UploadImage)
	}

	medical := authenticated.Group("/medical-expenses")
	{
		medical.POST("", s.handlers.Medical.CreateExpense)
		medical.GET("", s.handlers.Medical.ListExpenses)
		medical.GET("/categories/list", s.handlers.Medical.ListCategories)
		medical.GET("/summary/stats", s.handlers.Medical.GetStats)
		medical.GET("/:id", s.handlers.Medical.GetExpense)
		medical.PUT("/:id", s.handlers.Medical.UpdateExpense)
		medical.DELETE("/:id", s.handlers.Medical.DeleteExpense)
	}

	tax := authenticated.Group("/tax")
	{
		tax.GET("/summary", s.handlers.Tax.GetSummary)
		tax.GET("/deduction-estimate", s.handlers.Tax.GetDeductionEstimate)
		tax.GET("/profile/:year", s.handlers.Tax.GetProfile)
		tax.PUT("/profile", s.handlers.Tax.SaveProfile)
	}
}

// Start begins listening for requests and handles graceful shutdown
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on port %d", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited gracefully")
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
