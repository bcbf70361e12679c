package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"retalia-system/config"
	"retalia-system/internal/database"
	"retalia-system/internal/gateway/handlers"
	"retalia-system/internal/gateway/middleware"
	"retalia-system/internal/stock"
	stockhandler "retalia-system/internal/stock/handler"
	"retalia-system/internal/stock/repository"
)

func main() {
	cfg := config.LoadConfig()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}

	if err := database.MigrateCatalogDB(db); err != nil {
		log.Fatalf("Failed to migrate catalog database: %v", err)
	}

	stockService := stock.NewService(repository.NewPGRepository(db))
	stockHandler := stockhandler.NewStockHandler(stockService, redisClient)

	stockHTTP := handlers.NewStockHTTPHandler(stockHandler)
	catalogHTTP := handlers.NewCatalogHTTPHandler(stockHandler)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(cfg.Server.RateLimit))

	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	{
		catalog := protected.Group("/catalog")
		{
			catalog.GET("/products", catalogHTTP.ListProducts)
			catalog.GET("/locations", catalogHTTP.ListLocations)
			catalog.GET("/products/:id/attributes", catalogHTTP.GetProductAttributes)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.POST("/stock/preview", stockHTTP.PreviewStock)
			inventory.POST("/stock/batches", stockHTTP.SubmitStockBatch)
		}
	}

	r.GET("/health", healthCheckHandler(db, redisClient))

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := "healthy"
		httpStatus := http.StatusOK
		services := gin.H{"database": "healthy", "redis": "healthy"}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			services["database"] = "unavailable"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			services["redis"] = "unavailable"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"services":  services,
			"timestamp": time.Now(),
		})
	}
}
