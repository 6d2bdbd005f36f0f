package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/cache"
	"github.com/ventech/ventech_api/internal/config"
	"github.com/ventech/ventech_api/internal/database"
	"github.com/ventech/ventech_api/internal/dealpricing"
	"github.com/ventech/ventech_api/internal/handler"
	"github.com/ventech/ventech_api/internal/middleware"
	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/pkg/clock"
	"github.com/ventech/ventech_api/internal/repository"
	"github.com/ventech/ventech_api/internal/service"
	"github.com/ventech/ventech_api/internal/sse"
	"github.com/ventech/ventech_api/internal/utils"
	"github.com/ventech/ventech_api/internal/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting ventech api")

	// 3. Connect database
	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	// 4. Run migrations
	if err := database.Migrate(db.DB, "file://migrations"); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("migrations completed successfully")

	// 5. Connect Redis
	redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	dealCache := cache.NewDealCache(redisClient, cfg.Cache.FlashDealTTL, cfg.Cache.DealsTTL)

	// 6. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	dealRepo := repository.NewDealRepository(db)
	dealProductRepo := repository.NewDealProductRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	// 7. Optional delivery channels
	var storage service.ObjectStore
	if cfg.S3.Bucket != "" {
		s3Svc, err := service.NewS3Service(ctx, &cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("S3 service initialization failed - invoice upload will be disabled")
		} else {
			storage = s3Svc
		}
	} else {
		log.Info().Msg("S3_BUCKET not set - invoice upload disabled")
	}

	var mailer service.Mailer
	if cfg.SMTP.Host != "" {
		mailer = service.NewMailService(&cfg.SMTP)
	} else {
		log.Info().Msg("SMTP_HOST not set - invoice email disabled")
	}

	// 8. Initialize services
	clk := clock.System{}
	resolver := dealpricing.NewResolver(clk, cfg.Store.PlaceholderImage)
	tokens := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)

	settingsSvc := service.NewSettingsService(settingRepo)
	dealSvc := service.NewDealService(dealRepo, dealProductRepo, settingsSvc, dealCache, resolver, clk)
	catalogSvc := service.NewCatalogService(productRepo, dealSvc)
	dealMgmtSvc := service.NewDealManagementService(dealRepo, dealProductRepo, productRepo, dealSvc, resolver)
	adminAuthSvc := service.NewAdminAuthService(adminRepo, tokens, cfg.AdminSignupKey, clk)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, storage, mailer, settingsSvc, cfg.Store.Name, cfg.Store.Currency, clk)

	// Admin dashboards follow storefront changes over SSE
	sseHub := sse.NewHub()
	notifier := sse.NewHubNotifier(sseHub)
	dealMgmtSvc.SetNotifier(notifier)
	invoiceSvc.SetNotifier(notifier)

	// 9. Rate limiters
	authFailures := middleware.NewIPRateLimiter(ctx, cfg.RateLimit.AuthFailures)
	invoiceLimiter := middleware.NewIPRateLimiter(ctx, cfg.RateLimit.InvoicePerMinute)

	// 10. Initialize handlers
	handlers := &Handlers{
		Health:         handler.NewHealthHandler(db, redisClient),
		Deal:           handler.NewDealHandler(dealSvc),
		Product:        handler.NewProductHandler(catalogSvc),
		DealManagement: handler.NewDealManagementHandler(dealMgmtSvc),
		Auth:           handler.NewAuthHandler(adminAuthSvc, authFailures),
		Settings:       handler.NewSettingsHandler(settingsSvc),
		Invoice:        handler.NewInvoiceHandler(invoiceSvc),
		SSE:            handler.NewSSEHandler(sseHub, tokens),
	}

	jwtMw := middleware.NewJWTMiddleware(tokens, authFailures)

	// 11. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, middleware.RateLimit(invoiceLimiter))

	// 12. Start workers
	expiryWorker := worker.NewDealExpiryWorker(dealRepo, dealSvc, clk, cfg.Worker.DealExpiryInterval)
	expiryWorker.SetNotifier(notifier)
	go expiryWorker.Start(ctx)
	go worker.NewFlashDealWarmer(dealSvc, cfg.Worker.FlashWarmInterval).Start(ctx)

	// 13. Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 14. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers.
type Handlers struct {
	Health         *handler.HealthHandler
	Deal           *handler.DealHandler
	Product        *handler.ProductHandler
	DealManagement *handler.DealManagementHandler
	Auth           *handler.AuthHandler
	Settings       *handler.SettingsHandler
	Invoice        *handler.InvoiceHandler
	SSE            *handler.SSEHandler
}

func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, invoiceLimit gin.HandlerFunc) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Storefront
	v1 := router.Group("/v1")
	{
		v1.GET("/deals", handlers.Deal.ListDeals)
		v1.GET("/deals/flash", handlers.Deal.FlashDeals)
		v1.GET("/deals/products/:id", handlers.Deal.GetDealProduct)
		v1.GET("/products/:slug", handlers.Product.GetProduct)
		v1.GET("/settings/storefront", handlers.Settings.Storefront)

		v1.POST("/invoices", invoiceLimit, handlers.Invoice.Send)
		v1.POST("/invoices/preview", invoiceLimit, handlers.Invoice.Preview)
	}

	// Admin auth
	router.POST("/v1/admin/auth/login", handlers.Auth.Login)
	router.POST("/v1/admin/auth/signup", handlers.Auth.Signup)

	// Admin SSE (JWT via query param)
	router.GET("/v1/admin/events", handlers.SSE.Stream)

	// Admin (JWT)
	admin := router.Group("/v1/admin")
	admin.Use(jwtMiddleware.Handle())
	{
		admin.GET("/deals", handlers.DealManagement.ListDeals)
		admin.POST("/deals", handlers.DealManagement.CreateDeal)
		admin.GET("/deals/:id", handlers.DealManagement.GetDeal)
		admin.PUT("/deals/:id", handlers.DealManagement.UpdateDeal)
		admin.DELETE("/deals/:id", handlers.DealManagement.DeleteDeal)
		admin.POST("/deals/:id/products", handlers.DealManagement.AddDealProduct)
		admin.PUT("/deal-products/:id", handlers.DealManagement.UpdateDealProduct)
		admin.DELETE("/deal-products/:id", handlers.DealManagement.DeleteDealProduct)

		admin.GET("/settings", handlers.Settings.List)
		admin.GET("/settings/:key", handlers.Settings.Get)
		admin.PUT("/settings/:key", middleware.RequireRole(models.AdminRoleOwner), handlers.Settings.Update)

		admin.GET("/invoices/:orderNumber", handlers.Invoice.GetByOrder)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
