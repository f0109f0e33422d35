package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rebootmart/rebootmart-backend/api/routes"
	"github.com/rebootmart/rebootmart-backend/internal/auth"
	"github.com/rebootmart/rebootmart-backend/internal/cart"
	"github.com/rebootmart/rebootmart-backend/internal/catalog"
	"github.com/rebootmart/rebootmart-backend/internal/checkout"
	"github.com/rebootmart/rebootmart-backend/internal/discounts"
	"github.com/rebootmart/rebootmart-backend/internal/enquiries"
	"github.com/rebootmart/rebootmart-backend/internal/media"
	"github.com/rebootmart/rebootmart-backend/internal/orders"
	"github.com/rebootmart/rebootmart-backend/internal/products"
	"github.com/rebootmart/rebootmart-backend/internal/push"
	"github.com/rebootmart/rebootmart-backend/internal/users"
	"github.com/rebootmart/rebootmart-backend/pkg/auth/session"
	"github.com/rebootmart/rebootmart-backend/pkg/cloudinary"
	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/rebootmart/rebootmart-backend/pkg/db"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/metrics"
	"github.com/rebootmart/rebootmart-backend/pkg/migrate"
	"github.com/rebootmart/rebootmart-backend/pkg/onesignal"
	"github.com/rebootmart/rebootmart-backend/pkg/razorpay"
	"github.com/rebootmart/rebootmart-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	razorpayClient, err := razorpay.NewClient(ctx, cfg.Razorpay, logg)
	requireResource(ctx, logg, "razorpay client", err)

	cloudinaryClient, err := cloudinary.NewClient(ctx, cfg.Cloudinary, logg)
	requireResource(ctx, logg, "cloudinary client", err)

	onesignalClient, err := onesignal.NewClient(ctx, cfg.OneSignal, logg)
	requireResource(ctx, logg, "onesignal client", err)

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	discountRepo := discounts.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	productRepo := products.NewRepository(gormDB)
	pushRepo := push.NewRepository(gormDB)
	enquiryRepo := enquiries.NewRepository(gormDB)

	authService, err := auth.NewService(userRepo, sessionManager, cfg.JWT, cfg.Password, logg)
	requireResource(ctx, logg, "auth service", err)

	userService, err := users.NewService(userRepo)
	requireResource(ctx, logg, "user service", err)

	catalogService, err := catalog.NewService(catalogRepo)
	requireResource(ctx, logg, "catalog service", err)

	cartService, err := cart.NewService(cartRepo, catalogRepo, cfg.Tax.RateBps)
	requireResource(ctx, logg, "cart service", err)

	discountService, err := discounts.NewService(discountRepo)
	requireResource(ctx, logg, "discount service", err)

	checkoutService, err := checkout.NewService(
		cartRepo,
		catalogRepo,
		discountService,
		orderRepo,
		dbClient,
		razorpayClient,
		cfg.Tax.RateBps,
		cfg.Razorpay.CallbackURL,
		logg,
	)
	requireResource(ctx, logg, "checkout service", err)

	orderService, err := orders.NewService(orderRepo, dbClient, razorpayClient, logg)
	requireResource(ctx, logg, "order service", err)

	mediaService, err := media.NewService(cloudinaryClient)
	requireResource(ctx, logg, "media service", err)

	productService, err := products.NewService(productRepo, mediaService, logg)
	requireResource(ctx, logg, "product service", err)

	pushService, err := push.NewService(pushRepo, onesignalClient, logg)
	requireResource(ctx, logg, "push service", err)

	enquiryService, err := enquiries.NewService(enquiryRepo)
	requireResource(ctx, logg, "enquiry service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, metricsHandler, routes.Services{
			Auth:      authService,
			Users:     userService,
			Catalog:   catalogService,
			Cart:      cartService,
			Discounts: discountService,
			Checkout:  checkoutService,
			Orders:    orderService,
			Products:  productService,
			Push:      pushService,
			Enquiries: enquiryService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
