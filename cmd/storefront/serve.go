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

	"github.com/fjod/saree_store/internal/cache"
	"github.com/fjod/saree_store/internal/config"
	"github.com/fjod/saree_store/internal/events"
	h "github.com/fjod/saree_store/internal/http"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/mailer"
	"github.com/fjod/saree_store/internal/payment"
	"github.com/fjod/saree_store/internal/repository"
	"github.com/fjod/saree_store/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return runServe(cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply MongoDB migrations before serving (--migrate=false to skip)")

	return cmd
}

func runServe(cfg *config.Config, migrate bool) error {
	log, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck
	zap.ReplaceGlobals(log)

	if migrate {
		if err := repository.RunMigrations(cfg.MongoURI, cfg.MongoDBName); err != nil {
			return err
		}
		log.Info("migrations applied", zap.String("database", cfg.MongoDBName))
	}

	ctx := context.Background()

	// Set up MongoDB connection
	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName, repository.MongoOptions{
		MaxPoolSize:            cfg.MongoMaxPoolSize,
		MinPoolSize:            cfg.MongoMinPoolSize,
		ConnectTimeout:         cfg.MongoConnectTimeout,
		ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
	})
	if err != nil {
		return err
	}
	defer db.Client().Disconnect(context.Background()) //nolint:errcheck
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	var publisher events.Publisher = events.NoopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, brokers...)
		log.Info("publishing events to kafka", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN is empty, admin API is locked")
	}
	gateway := payment.NewBreakerGateway(
		payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		payment.DefaultBreakerSettings,
		log,
	)

	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	notifications := repository.NewNotificationRepository(db)
	users := repository.NewUserRepository(db)

	catalog := service.NewCatalogService(products, cache.NewRedisCatalogCache(redisClient, cfg.CatalogCacheTTL), log)
	carts := service.NewCartService(cache.NewRedisCartStore(redisClient, cfg.CartTTL), products, log)
	orderSvc := service.NewOrderService(orders, notifications, publisher, cfg.Currency, log)
	paymentSvc := service.NewPaymentService(gateway, orders, notifications, publisher,
		cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.Currency, log)
	authSvc := service.NewAuthService(users, cache.NewRedisOTPStore(redisClient, cfg.OTPTTL),
		mailer.NewLogMailer(log, cfg.IsDevelopment()), log)

	handlers := h.Handlers{
		Products:      h.NewProductHandler(catalog, cfg.RequestTimeout, log),
		Cart:          h.NewCartHandler(carts, cfg.RequestTimeout, log),
		Orders:        h.NewOrderHandler(orderSvc, cfg.RequestTimeout, log),
		Payments:      h.NewPaymentHandler(paymentSvc, cfg.RequestTimeout, log),
		Notifications: h.NewNotificationHandler(service.NewNotificationService(notifications), cfg.RequestTimeout, log),
		Auth:          h.NewAuthHandler(authSvc, cfg.RequestTimeout, log),
		Analytics:     h.NewAnalyticsHandler(service.NewAnalyticsService(orders, products, notifications), cfg.RequestTimeout, log),
		Health: h.NewHealthHandler(map[string]h.Checker{
			"mongo": func(ctx context.Context) error { return db.Client().Ping(ctx, readpref.Primary()) },
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	}

	router := h.NewRouter(handlers, h.RouterConfig{
		AdminToken:         cfg.AdminToken,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
