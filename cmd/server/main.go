package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "storefront/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/blob"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/handler"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
)

// @title Storefront API
// @version 1.0
// @description Catalog, accounts, checkout and order tracking for the storefront.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description The sign-in token, optionally prefixed with "Bearer ".
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN(), !cfg.IsProduction())
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn("drop tables", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, running without cache", zap.Error(err))
	}

	photos, mongoClient := photoStore(cfg, logger)
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	tokenStore := auth.NewTokenStore(cacheClient)

	gateway := payment.NewBraintreeGateway(payment.BraintreeConfig{
		Environment: cfg.BraintreeEnvironment,
		MerchantID:  cfg.BraintreeMerchantID,
		PublicKey:   cfg.BraintreePublicKey,
		PrivateKey:  cfg.BraintreePrivateKey,
	}, &http.Client{Timeout: 30 * time.Second})

	// Services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cacheClient, logger)
	userService := service.NewUserService(userRepo, cacheClient)
	categoryService := service.NewCategoryService(categoryRepo, cacheClient, logger)
	productService := service.NewProductService(productRepo, categoryRepo, photos, cacheClient, logger, cfg.MaxPhotoSize)
	orderService := service.NewOrderService(orderRepo)
	checkoutService := service.NewCheckoutService(gateway, orderRepo, logger)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		logger,
		middleware.RequireSignIn(jwtService, tokenStore, logger),
		middleware.IsAdmin(userService, logger),
		router.Handlers{
			Auth:     handler.NewAuthHandler(authService, logger),
			User:     handler.NewUserHandler(userService, logger),
			Order:    handler.NewOrderHandler(orderService, logger),
			Category: handler.NewCategoryHandler(categoryService, logger),
			Product:  handler.NewProductHandler(productService, logger),
			Payment:  handler.NewPaymentHandler(checkoutService, logger),
		},
	)

	logger.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// photoStore uses GridFS when MONGO_URI is set and process memory otherwise.
func photoStore(cfg *config.Config, logger *zap.Logger) (blob.Store, *mongo.Client) {
	if cfg.MongoURI == "" {
		logger.Warn("MONGO_URI not set, product photos are kept in memory")
		return blob.NewMemoryStore(), nil
	}
	client, database, err := db.NewMongo(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Fatal("mongo init", zap.Error(err))
	}
	store, err := blob.NewGridFSStore(database)
	if err != nil {
		logger.Fatal("gridfs init", zap.Error(err))
	}
	return store, client
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
