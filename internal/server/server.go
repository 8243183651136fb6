package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"streamaccts/internal/client"
	"streamaccts/internal/config"
	"streamaccts/internal/handler"
	appmw "streamaccts/internal/middleware"
	"streamaccts/internal/service"
	"streamaccts/internal/storage"
)

type Services struct {
	Products    service.ProductService
	Orders      service.OrderService
	Fulfillment service.FulfillmentService
	Payments    service.PaymentService
	Users       service.UserService
	Stats       service.StatsService
}

type Server struct {
	echo           *echo.Echo
	cfg            *config.Config
	verifier       client.TokenVerifier
	productHandler *handler.ProductHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	userHandler    *handler.UserHandler
}

func NewServer(cfg *config.Config, verifier client.TokenVerifier, services Services, log logrus.FieldLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.Environment.IsProduction(), log)

	e.Use(middleware.Recover())
	e.Use(appmw.RequestLogger(log))
	if cfg.HTTP.RateLimit > 0 {
		e.Use(rateLimiter(cfg.HTTP))
	}
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.HTTP.CORSOrigin},
		AllowCredentials: true,
	}))
	e.Use(appmw.Compress())
	e.Use(middleware.BodyLimit(cfg.HTTP.BodyLimit))

	s := &Server{
		echo:           e,
		cfg:            cfg,
		verifier:       verifier,
		productHandler: handler.NewProductHandler(services.Products),
		orderHandler:   handler.NewOrderHandler(services.Orders, services.Fulfillment, services.Stats),
		paymentHandler: handler.NewPaymentHandler(services.Payments),
		userHandler:    handler.NewUserHandler(services.Users),
	}

	s.setupRoutes()
	return s
}

func rateLimiter(cfg config.HTTPServer) echo.MiddlewareFunc {
	window := time.Duration(cfg.RateWindowMinutes) * time.Minute
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Every(window / time.Duration(cfg.RateLimit)),
		Burst:     cfg.RateLimit,
		ExpiresIn: window,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
		},
	})
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.health)
	s.echo.Static(storage.LocalPrefix, s.cfg.Storage.UploadDir)

	auth := appmw.Authenticate(s.verifier)
	admin := appmw.RequireAdmin()

	api := s.echo.Group("/api")

	// -------- auth --------
	authGroup := api.Group("/auth")
	authGroup.POST("/verify", s.userHandler.Verify)
	authGroup.POST("/set-claims", s.userHandler.SetClaims, auth, admin)

	// -------- products --------
	products := api.Group("/products")
	products.GET("", s.productHandler.List)
	products.GET("/:id", s.productHandler.Get)
	products.POST("", s.productHandler.Create, auth, admin)
	products.POST("/images", s.productHandler.UploadImage, auth, admin)
	products.PUT("/:id", s.productHandler.Update, auth, admin)
	products.DELETE("/:id", s.productHandler.Delete, auth, admin)

	// -------- orders --------
	orders := api.Group("/orders", auth)
	orders.POST("", s.orderHandler.Create)
	orders.GET("/user/:userId", s.orderHandler.ListForUser)
	orders.GET("/:id", s.orderHandler.Get)
	orders.PATCH("/:id/message", s.orderHandler.SetUserMessage)
	orders.POST("/:id/fulfill", s.orderHandler.Fulfill, admin)

	orderAdmin := orders.Group("/admin", admin)
	orderAdmin.GET("/all", s.orderHandler.ListAll)
	orderAdmin.GET("/stats", s.orderHandler.Stats)
	orderAdmin.PATCH("/:id/status", s.orderHandler.UpdateStatus)
	orderAdmin.PATCH("/:id/response", s.orderHandler.SetAdminResponse)

	// -------- users --------
	users := api.Group("/users", auth)
	users.GET("/profile", s.userHandler.Profile)
	users.PUT("/profile", s.userHandler.UpdateProfile)
	users.PATCH("/:userId/admin", s.userHandler.SetAdmin, admin)

	// -------- payments --------
	api.GET("/payments/fees", s.paymentHandler.Fees)

	payments := api.Group("/payments", auth)
	payments.POST("/stripe/create-intent", s.paymentHandler.CreateStripeIntent)
	payments.POST("/paypal/create-order", s.paymentHandler.CreatePaypalOrder)
	payments.POST("/paypal/capture-order", s.paymentHandler.CapturePaypalOrder)
	payments.GET("/braintree/client-token", s.paymentHandler.BraintreeClientToken)
	payments.POST("/braintree/checkout", s.paymentHandler.BraintreeCheckout)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.cfg.Environment.Name,
	})
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
