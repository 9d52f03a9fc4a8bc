package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/emeraldlabs/storefront/internal/accounts"
	"github.com/emeraldlabs/storefront/internal/affiliate"
	"github.com/emeraldlabs/storefront/internal/cart"
	"github.com/emeraldlabs/storefront/internal/catalog"
	"github.com/emeraldlabs/storefront/internal/checkout"
	"github.com/emeraldlabs/storefront/internal/config"
	"github.com/emeraldlabs/storefront/internal/messaging"
	"github.com/emeraldlabs/storefront/internal/orders"
	"github.com/emeraldlabs/storefront/internal/session"
	"github.com/emeraldlabs/storefront/internal/telemetry"
	"github.com/emeraldlabs/storefront/internal/validation"
)

const (
	serviceName    = "storefront"
	serviceVersion = "1.0.0"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("storefront exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	if err := runtime.Start(); err != nil {
		return fmt.Errorf("start runtime metrics: %w", err)
	}

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()
	sessions := session.NewStore(redisClient, session.DefaultTTL)

	publisher := messaging.NewPublisher(cfg.KafkaBrokers)
	defer func() { _ = publisher.Close() }()

	validate := validation.New()

	catalogRepo := catalog.NewCatalogRepository(db)
	cartRepo := cart.NewCartRepository(db)
	checkoutRepo := checkout.NewCheckoutRepository(db)
	orderRepo := orders.NewOrderRepository(db)
	affiliateRepo := affiliate.NewAffiliateRepository(db)
	accountRepo := accounts.NewAccountRepository(db)

	catalogHandler := catalog.NewHandler(catalogRepo, validate, logger)
	cartHandler := cart.NewHandler(cartRepo, logger)
	checkoutHandler := checkout.NewHandler(checkoutRepo, sessions, publisher, validate, cfg.AdminEmail, logger)
	orderHandler := orders.NewHandler(orderRepo, logger)
	affiliateHandler := affiliate.NewHandler(affiliateRepo, publisher, validate, cfg.BaseURL, cfg.AdminEmail, logger)
	accountHandler := accounts.NewHandler(accountRepo, publisher, validate, cfg.AdminEmail, logger)

	tracker := affiliate.NewTracker(affiliateRepo, affiliateRepo, sessions, logger)

	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, telemetry.WithHTTPRoute(h))
	}
	// Storefront pages carry referral tracking.
	handlePage := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, tracker.Middleware(telemetry.WithHTTPRoute(h)))
	}

	handlePage("GET /{$}", catalogHandler.HandleHome)
	handlePage("GET /shop", catalogHandler.HandleShop)
	handlePage("GET /products/{slug}", catalogHandler.HandleProductDetail)
	handlePage("GET /categories/{slug}", catalogHandler.HandleCategoryProducts)
	handle("POST /products/{slug}/reviews", catalogHandler.HandleAddReview)

	handle("GET /cart", cartHandler.HandleViewCart)
	handle("POST /add-to-cart/{productId}", cartHandler.HandleAddToCart)
	handle("POST /cart/items/{itemId}", cartHandler.HandleUpdateItem)

	handle("POST /checkout", checkoutHandler.HandleCheckout)
	handle("GET /orders", orderHandler.HandleListOrders)
	handle("GET /orders/{orderNumber}", orderHandler.HandleOrderDetail)
	handle("PUT /admin/orders/{orderNumber}/status", orderHandler.HandleUpdateStatus)

	handle("POST /affiliate/signup", affiliateHandler.HandleSignup)
	handle("GET /affiliate/dashboard", affiliateHandler.HandleDashboard)
	handle("GET /affiliate/referrals", affiliateHandler.HandleReferrals)
	handle("GET /affiliate/links", affiliateHandler.HandleLinks)
	handle("POST /affiliate/withdraw", affiliateHandler.HandleWithdraw)
	handle("GET /affiliate/withdrawals", affiliateHandler.HandleWithdrawals)
	handle("POST /admin/referrals/{referralId}/approve", affiliateHandler.HandleApproveReferral)
	handle("POST /admin/referrals/{referralId}/pay", affiliateHandler.HandleMarkReferralPaid)
	handle("POST /admin/referrals/{referralId}/reject", affiliateHandler.HandleRejectReferral)
	handle("POST /admin/withdrawals/{withdrawalId}/process", affiliateHandler.HandleProcessWithdrawal)

	handle("POST /users", accountHandler.HandleCreateUser)
	handle("GET /profile", accountHandler.HandleGetProfile)
	handle("PUT /profile/preferences", accountHandler.HandleUpdatePreferences)
	handle("GET /addresses", accountHandler.HandleListAddresses)
	handle("POST /addresses", accountHandler.HandleCreateAddress)
	handle("PUT /addresses/{addressId}", accountHandler.HandleUpdateAddress)
	handle("POST /addresses/{addressId}/default", accountHandler.HandleSetDefaultAddress)
	handle("DELETE /addresses/{addressId}", accountHandler.HandleDeleteAddress)
	handle("GET /wishlist", accountHandler.HandleWishlist)
	handle("POST /wishlist/{productId}", accountHandler.HandleAddToWishlist)
	handle("DELETE /wishlist/{productId}", accountHandler.HandleRemoveFromWishlist)
	handle("POST /newsletter/subscribe", accountHandler.HandleSubscribeNewsletter)
	handle("POST /newsletter/unsubscribe", accountHandler.HandleUnsubscribeNewsletter)
	handle("POST /contact", accountHandler.HandleContactForm)

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(mux, "storefront"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
