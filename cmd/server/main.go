package main

import (
	"fmt"
	"log"

	_ "github.com/celiacapp/celiac-tracker-service/docs"
	"github.com/celiacapp/celiac-tracker-service/internal/config"
	"github.com/celiacapp/celiac-tracker-service/internal/database"
	"github.com/celiacapp/celiac-tracker-service/internal/handler"
	"github.com/celiacapp/celiac-tracker-service/internal/repository"
	"github.com/celiacapp/celiac-tracker-service/internal/server"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
	"github.com/celiacapp/celiac-tracker-service/internal/storage"
)

// @title Celiac Tracker API
// @version 1.0
// @description Gluten-free purchase and medical expense tracking with tax deduction calculation
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pool := db.GetPool()
	userRepo := repository.NewPostgresUserRepository(pool)
	productRepo := repository.NewPostgresProductRepository(pool, cfg.PublicCatalogEmail)
	receiptRepo := repository.NewPostgresReceiptRepository(pool)
	medicalRepo := repository.NewPostgresMedicalExpenseRepository(pool)
	profileRepo := repository.NewPostgresTaxProfileRepository(pool)

	// Image storage is optional; without it receipt image uploads fail with
	// a clear error while the rest of the API works.
	var uploader service.ImageUploader
	s3Uploader, err := storage.NewS3Uploader(&storage.Config{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		AccessKeySecret: cfg.S3AccessKeySecret,
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
	})
	if err != nil {
		log.Printf("Image storage disabled: %v", err)
	} else {
		uploader = s3Uploader
	}

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:             userRepo,
		JWTSecret:            cfg.JWTSecret,
		JWTAccessExpiration:  cfg.JWTAccessExpiration,
		JWTRefreshExpiration: cfg.JWTRefreshExpiration,
	})
	productService := service.NewProductService(productRepo)
	receiptService := service.NewReceiptService(receiptRepo, uploader)
	medicalService := service.NewMedicalExpenseService(medicalRepo)
	taxService := service.NewTaxService(receiptRepo, medicalRepo, profileRepo, service.TaxRules{
		MedicalFixedCap: cfg.TaxMedicalFixedCap,
		ThresholdRate:   cfg.TaxThresholdRate,
		EstimateRate:    cfg.TaxEstimateRate,
	})

	handlers := server.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(productService),
		Receipt: handler.NewReceiptHandler(receiptService),
		Medical: handler.NewMedicalHandler(medicalService),
		Tax:     handler.NewTaxHandler(taxService),
	}

	log.Println("Configuring server...")
	appServer := server.NewServer(cfg, handlers, authService)

	log.Printf("Starting server on port %d...", cfg.Port)
	if err := appServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server shutdown complete")
}
