package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zelora-backend/config"
	"zelora-backend/internal/delivery/http/middleware"
	v1 "zelora-backend/internal/delivery/http/v1"
	"zelora-backend/internal/infrastructure/cache"
	"zelora-backend/internal/infrastructure/email"
	"zelora-backend/internal/infrastructure/payment"
	"zelora-backend/internal/repository/postgres"
	"zelora-backend/internal/usecase"
	"zelora-backend/pkg/logger"
	"zelora-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL")

	// Repositories
	userRepo := postgres.NewUserRepository(pgxPool)
	productRepo := postgres.NewProductRepository(pgxPool)
	cartRepo := postgres.NewCartRepository(pgxPool)
	couponRepo := postgres.NewCouponRepository(pgxPool)
	orderRepo := postgres.NewOrderRepository(pgxPool)
	returnRepo := postgres.NewReturnRepository(pgxPool)
	notifRepo := postgres.NewNotificationRepository(pgxPool)
	txManager := postgres.NewTransactionManager(pgxPool)

	// Infrastructure
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)
	gateway := payment.NewGatewayClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, cfg.GatewayHTTPTimeout)
	emailSender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	mux := http.NewServeMux()

	// --- Modules ---

	notificationUC := usecase.NewNotificationUsecase(notifRepo)
	notificationHandler := v1.NewNotificationHandler(notificationUC)

	authUC := usecase.NewAuthUsecase(userRepo, emailSender, cfg)
	authHandler := v1.NewAuthHandler(authUC, cfg)

	catalogUC := usecase.NewCatalogUsecase(productRepo, orderRepo, memCache, cfg)
	catalogHandler := v1.NewCatalogHandler(catalogUC)

	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, couponRepo, cfg)
	cartHandler := v1.NewCartHandler(cartUC)

	couponUC := usecase.NewCouponUsecase(couponRepo)
	couponHandler := v1.NewCouponHandler(couponUC)

	checkoutUC := usecase.NewCheckoutUsecase(
		cartUC, cartRepo, productRepo, couponRepo, orderRepo, userRepo,
		gateway, txManager, notificationUC, emailSender, cfg,
	)
	paymentHandler := v1.NewPaymentHandler(checkoutUC)

	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, txManager, notificationUC, cfg)
	orderHandler := v1.NewOrderHandler(checkoutUC, orderUC)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC)

	returnUC := usecase.NewReturnUsecase(returnRepo, orderRepo, txManager, notificationUC, cfg)
	returnHandler := v1.NewReturnHandler(returnUC)
	adminReturnHandler := v1.NewAdminReturnHandler(returnUC)

	// --- Routes ---

	authMW := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}
	adminMW := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("GET /api/v1/auth/me", authMW(authHandler.Me))

	// Catalog (public)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.List)
	mux.HandleFunc("GET /api/v1/products/{id}", catalogHandler.Get)
	mux.HandleFunc("GET /api/v1/products/{id}/reviews", catalogHandler.GetReviews)
	mux.Handle("POST /api/v1/products/{id}/reviews", authMW(catalogHandler.AddReview))

	// Cart
	mux.Handle("GET /api/v1/cart", authMW(cartHandler.GetCart))
	mux.Handle("POST /api/v1/cart/add", authMW(cartHandler.AddItem))
	mux.Handle("PUT /api/v1/cart/update", authMW(cartHandler.UpdateItem))
	mux.Handle("DELETE /api/v1/cart/remove/{productId}", authMW(cartHandler.RemoveItem))
	mux.Handle("POST /api/v1/cart/apply-coupon", authMW(cartHandler.ApplyCoupon))
	mux.Handle("DELETE /api/v1/cart/remove-coupon", authMW(cartHandler.RemoveCoupon))

	// Payment
	mux.Handle("POST /api/v1/payment/create-order", authMW(paymentHandler.CreateOrder))
	mux.Handle("POST /api/v1/payment/verify-payment", authMW(paymentHandler.VerifyPayment))

	// Orders
	mux.Handle("POST /api/v1/orders", authMW(orderHandler.Create))
	mux.Handle("GET /api/v1/orders", authMW(orderHandler.GetMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", authMW(orderHandler.Get))
	mux.Handle("PUT /api/v1/orders/{id}/cancel", authMW(orderHandler.Cancel))
	mux.Handle("POST /api/v1/orders/{id}/refund-bank-details", authMW(orderHandler.SubmitRefundBankDetails))

	// Returns
	mux.Handle("POST /api/v1/returns", authMW(returnHandler.Create))
	mux.Handle("GET /api/v1/returns/my-returns", authMW(returnHandler.GetMyReturns))
	mux.Handle("GET /api/v1/returns/{id}", authMW(returnHandler.Get))
	mux.Handle("DELETE /api/v1/returns/{id}", authMW(returnHandler.Cancel))

	// Notifications
	mux.Handle("GET /api/v1/notifications", authMW(notificationHandler.List))
	mux.Handle("PUT /api/v1/notifications/read-all", authMW(notificationHandler.MarkAllRead))
	mux.Handle("PUT /api/v1/notifications/{id}/read", authMW(notificationHandler.MarkRead))

	// Admin
	mux.Handle("POST /api/v1/admin/products", adminMW(catalogHandler.CreateProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", adminMW(catalogHandler.UpdateProduct))

	mux.Handle("GET /api/v1/admin/orders", adminMW(adminOrderHandler.List))
	mux.Handle("PUT /api/v1/admin/orders/{id}/status", adminMW(adminOrderHandler.UpdateStatus))
	mux.Handle("PUT /api/v1/admin/orders/{id}/payment-status", adminMW(adminOrderHandler.UpdatePaymentStatus))
	mux.Handle("POST /api/v1/admin/orders/{id}/delivery-updates", adminMW(adminOrderHandler.AddDeliveryUpdate))

	mux.Handle("GET /api/v1/admin/returns", adminMW(adminReturnHandler.List))
	mux.Handle("PUT /api/v1/admin/returns/{id}/status", adminMW(adminReturnHandler.UpdateStatus))

	mux.Handle("POST /api/v1/admin/coupons", adminMW(couponHandler.Create))
	mux.Handle("GET /api/v1/admin/coupons", adminMW(couponHandler.List))
	mux.Handle("GET /api/v1/admin/coupons/{id}", adminMW(couponHandler.Get))
	mux.Handle("PUT /api/v1/admin/coupons/{id}", adminMW(couponHandler.Update))
	mux.Handle("DELETE /api/v1/admin/coupons/{id}", adminMW(couponHandler.Delete))

	// Health check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	addr := fmt.Sprintf(":%s", cfg.Port)

	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,
		100,
		time.Minute,
		3*time.Minute,
	)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
