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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cartapp "github.com/lumina/storefront/internal/application/cart"
	catalogapp "github.com/lumina/storefront/internal/application/catalog"
	checkoutapp "github.com/lumina/storefront/internal/application/checkout"
	"github.com/lumina/storefront/internal/application/dashboard"
	"github.com/lumina/storefront/internal/application/fulfillment"
	identityapp "github.com/lumina/storefront/internal/application/identity"
	"github.com/lumina/storefront/internal/application/notification"
	orderapp "github.com/lumina/storefront/internal/application/order"
	settingsapp "github.com/lumina/storefront/internal/application/settings"
	"github.com/lumina/storefront/internal/infrastructure/auth"
	"github.com/lumina/storefront/internal/infrastructure/cache"
	"github.com/lumina/storefront/internal/infrastructure/config"
	"github.com/lumina/storefront/internal/infrastructure/event"
	"github.com/lumina/storefront/internal/infrastructure/logger"
	"github.com/lumina/storefront/internal/infrastructure/mailer"
	"github.com/lumina/storefront/internal/infrastructure/payment"
	"github.com/lumina/storefront/internal/infrastructure/persistence"
	"github.com/lumina/storefront/internal/infrastructure/printing"
	"github.com/lumina/storefront/internal/infrastructure/scheduler"
	"github.com/lumina/storefront/internal/infrastructure/storage"
	"github.com/lumina/storefront/internal/infrastructure/supplier"
	"github.com/lumina/storefront/internal/infrastructure/telemetry"
	"github.com/lumina/storefront/internal/interfaces/http/handler"
	"github.com/lumina/storefront/internal/interfaces/http/middleware"
	"github.com/lumina/storefront/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/lumina/storefront/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Lumina Storefront API
//	@version		1.0.0
//	@description	Storefront, checkout and back-office API of the Lumina shop
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.email	support@lumina.store

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export needs a logger first; the bridged logger replaces it below.
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		log = telemetry.NewBridgedLogger(logger.NewCore(logCfg), otelCore,
			zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Lumina storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link span profiles", zap.Error(err))
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.Driver), log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	stores, err := cache.NewFactory(cfg.Redis, cfg.Cart, cache.WithLogger(log)).CreateStores(ctx)
	if err != nil {
		log.Fatal("Failed to create cart store", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing stores", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Integrations
	supplierClient := supplier.NewSimulatedClient(cfg.Supplier, supplier.WithLogger(log))
	gateway := payment.NewMockGateway(cfg.Checkout.DeclineTag, log)
	imageStorage, stubStorage := newImageStorage(ctx, cfg, log)

	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to parse print templates", zap.Error(err))
	}
	var pdfRenderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(cfg.Printing, log)
		defer func() { _ = chrome.Close() }()
		pdfRenderer = chrome
	}
	packingSlips := printing.NewPackingSlipPrinter(templates, pdfRenderer, log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	productService := catalogapp.NewProductService(productRepo, supplierClient, log)
	imageService := catalogapp.NewImageService(imageStorage, cfg.Storage.MaxUploadSize, log)
	cartService := cartapp.NewCartService(stores.Carts, productRepo, log)
	checkoutService := checkoutapp.NewCheckoutService(productRepo, txScope, gateway)
	fulfillmentService := fulfillment.NewService(orderRepo, txScope, supplierClient, stores.Guard, fulfillment.Config{
		SupplierTimeout:   cfg.Supplier.Timeout,
		GuardTTL:          cfg.Fulfillment.GuardTTL,
		EscalateOnFailure: cfg.Fulfillment.EscalateOnFailure,
	})
	orderService := orderapp.NewOrderService(orderRepo, settingsRepo, txScope, packingSlips)
	orderService.SetStalledAfter(cfg.Fulfillment.GuardTTL)
	authService := identityapp.NewAuthService(userRepo, jwtService,
		identityapp.AuthServiceConfig{BootstrapAdminEmail: cfg.Auth.BootstrapAdminEmail}, log)
	settingsService := settingsapp.NewSettingsService(settingsRepo, log)
	dashboardService := dashboard.NewDashboardService(orderRepo, productRepo)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meterProvider.Meter("lumina.business"),
		Logger:            log,
		LowStockProvider:  productRepo,
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
	defer businessMetrics.Stop()

	productService.SetBusinessMetrics(businessMetrics)
	checkoutService.SetBusinessMetrics(businessMetrics)
	fulfillmentService.SetBusinessMetrics(businessMetrics)
	orderService.SetBusinessMetrics(businessMetrics)

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	orderPlacedHandler := notification.NewOrderPlacedHandler(
		mailer.NewLogMailer(log), settingsService, productRepo, cfg.Inventory.LowStockThreshold, log)
	fulfillmentLogHandler := notification.NewFulfillmentLogHandler(log)
	eventBus.Subscribe(orderPlacedHandler)
	eventBus.Subscribe(fulfillmentLogHandler)
	log.Info("Event handlers registered",
		zap.Strings("order_placed_events", orderPlacedHandler.EventTypes()),
		zap.Strings("fulfillment_events", fulfillmentLogHandler.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	checkoutService.SetEventPublisher(eventBus)
	fulfillmentService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)

	if cfg.Inventory.SyncInterval > 0 {
		syncScheduler, err := scheduler.NewScheduler(scheduler.Config{
			Interval:      cfg.Inventory.SyncInterval,
			JobTimeout:    cfg.Inventory.SyncTimeout,
			RetryAttempts: cfg.Inventory.SyncRetryAttempts,
			RetryDelay:    cfg.Inventory.SyncRetryDelay,
		}, scheduler.SyncFunc(func(ctx context.Context) (int, error) {
			result, err := productService.SyncInventory(ctx)
			if err != nil {
				return 0, err
			}
			return result.UpdatedCount, nil
		}), log.Named("inventory-sync"))
		if err != nil {
			log.Fatal("Invalid inventory sync schedule", zap.Error(err))
		}
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start inventory sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Inventory.SyncTimeout)
			defer cancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Warn("Inventory sync scheduler did not stop cleanly", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID - generate or propagate the request id
	// 2. Tracing - open the server span so later middleware logs carry trace ids
	// 3. Recovery and request logging
	// 4. Metrics and profiling labels
	// 5. Security headers, CORS, body limit, global rate limit
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
	}))
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	var authRateLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authRateLimit = middleware.AuthRateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
	}

	requireAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})

	engine.GET("/health", handler.NewHealthHandler(db, version).Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, requireAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	if stubStorage != nil {
		engine.GET("/uploads/*key", serveStubUpload(stubStorage))
	}

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.APIGroups(router.Handlers{
			Products: handler.NewProductHandler(productService, imageService),
			Cart:     handler.NewCartHandler(cartService),
			Checkout: handler.NewCheckoutHandler(checkoutService),
			Auth:     handler.NewAuthHandler(authService),
			Orders:   handler.NewOrderHandler(orderService, fulfillmentService),
			Admin:    handler.NewAdminHandler(dashboardService, settingsService),
		}, router.Guards{
			RequireAuth:   requireAuth,
			OptionalAuth:  middleware.OptionalJWTAuthMiddleware(jwtService),
			AuthRateLimit: authRateLimit,
			Logger:        log,
		})...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newImageStorage returns S3 storage when enabled, otherwise the in-memory stub.
// The stub is also returned so its objects can be served under /uploads.
func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalogapp.ImageStorage, *storage.StubImageStorage) {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, keeping uploads in memory")
		stub := storage.NewStubImageStorage()
		return stub, stub
	}

	s3, err := storage.NewS3ImageStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create object storage client", zap.Error(err))
	}
	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(bucketCtx); err != nil {
		log.Warn("Failed to verify storage bucket", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	return s3, nil
}

func serveStubUpload(stub *storage.StubImageStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := stub.Object(strings.TrimPrefix(c.Param("key"), "/"))
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, http.DetectContentType(data), data)
	}
}
