package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rebootmart/rebootmart-backend/api/controllers"
	webhookcontrollers "github.com/rebootmart/rebootmart-backend/api/controllers/webhooks"
	"github.com/rebootmart/rebootmart-backend/api/middleware"
	authsvc "github.com/rebootmart/rebootmart-backend/internal/auth"
	cartsvc "github.com/rebootmart/rebootmart-backend/internal/cart"
	catalogsvc "github.com/rebootmart/rebootmart-backend/internal/catalog"
	checkoutsvc "github.com/rebootmart/rebootmart-backend/internal/checkout"
	discountsvc "github.com/rebootmart/rebootmart-backend/internal/discounts"
	enquirysvc "github.com/rebootmart/rebootmart-backend/internal/enquiries"
	ordersvc "github.com/rebootmart/rebootmart-backend/internal/orders"
	productsvc "github.com/rebootmart/rebootmart-backend/internal/products"
	pushsvc "github.com/rebootmart/rebootmart-backend/internal/push"
	usersvc "github.com/rebootmart/rebootmart-backend/internal/users"
	"github.com/rebootmart/rebootmart-backend/pkg/auth/session"
	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/metrics"
	"github.com/rebootmart/rebootmart-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the router wires to handlers.
type Services struct {
	Auth      authsvc.Service
	Users     usersvc.Service
	Catalog   catalogsvc.Service
	Cart      cartsvc.Service
	Discounts discountsvc.Service
	Checkout  checkoutsvc.Service
	Orders    ordersvc.Service
	Products  productsvc.Service
	Push      pushsvc.Service
	Enquiries enquirysvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, redisClient, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Public storefront surface. No credentials required.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
		r.Get("/compare", controllers.CompareProducts(svcs.Catalog, logg))
		r.Get("/{productID}", controllers.ProductDetail(svcs.Catalog, logg))
	})
	r.Post("/api/v1/enquiries", controllers.CreateEnquiry(svcs.Enquiries, logg))
	r.Post("/api/v1/discounts/verify", controllers.VerifyDiscount(svcs.Discounts, logg))
	r.Post("/api/v1/webhooks/razorpay", webhookcontrollers.RazorpayWebhook(svcs.Orders, logg))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	// Buyer surface. Requires a live session.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/auth/me", controllers.AuthMe(svcs.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Put("/items/{productID}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(svcs.Orders, logg))
			r.Post("/verify-payment", controllers.VerifyPayment(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetMyOrder(svcs.Orders, logg))
		})
	})

	// Admin console. Requires a live session with the admin role.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(svcs.Products, logg))
			r.Post("/", controllers.AdminCreateProduct(svcs.Products, logg))
			r.Get("/{productID}", controllers.AdminGetProduct(svcs.Products, logg))
			r.Patch("/{productID}", controllers.AdminUpdateProduct(svcs.Products, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(svcs.Products, logg))
			r.Patch("/{productID}/stock", controllers.AdminSetStock(svcs.Products, logg))
			r.Post("/{productID}/images", controllers.AdminUploadProductImage(svcs.Products, logg))
			r.Delete("/{productID}/images/{imageID}", controllers.AdminDeleteProductImage(svcs.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.AdminGetOrder(svcs.Orders, logg))
			r.Post("/{orderID}/transition", controllers.AdminTransitionOrder(svcs.Orders, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(svcs.Users, logg))
			r.Post("/tags", controllers.AdminAddUserTags(svcs.Users, logg))
			r.Delete("/tags", controllers.AdminRemoveUserTags(svcs.Users, logg))
			r.Get("/{userID}", controllers.AdminGetUser(svcs.Users, logg))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", controllers.AdminListDiscounts(svcs.Discounts, logg))
			r.Post("/", controllers.AdminCreateDiscount(svcs.Discounts, logg))
			r.Patch("/{discountID}", controllers.AdminUpdateDiscount(svcs.Discounts, logg))
			r.Delete("/{discountID}", controllers.AdminDeleteDiscount(svcs.Discounts, logg))
		})

		r.Route("/push", func(r chi.Router) {
			r.Get("/", controllers.AdminListPushHistory(svcs.Push, logg))
			r.Post("/", controllers.AdminSendPush(svcs.Push, logg))
		})

		r.Route("/enquiries", func(r chi.Router) {
			r.Get("/", controllers.AdminListEnquiries(svcs.Enquiries, logg))
			r.Post("/{enquiryID}/resolve", controllers.AdminResolveEnquiry(svcs.Enquiries, logg))
		})
	})

	return r
}
