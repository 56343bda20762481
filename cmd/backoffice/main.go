package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/mimos-de-madera/backoffice-service/internal/auth"
	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/events"
	"github.com/mimos-de-madera/backoffice-service/internal/handlers"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
	"github.com/mimos-de-madera/backoffice-service/internal/server"
	"github.com/mimos-de-madera/backoffice-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewLogger("backoffice-service")
	logger.Info("Starting backoffice-service", logging.Fields{"port": cfg.Server.Port})

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	cache := repository.NewRedisCache(cfg.Redis)

	orderRepo := repository.NewPostgresOrderRepository(db, logging.NewLogger("order-repo"))
	productRepo := repository.NewPostgresProductRepository(db, logging.NewLogger("product-repo"))
	categoryRepo := repository.NewPostgresCategoryRepository(db, logging.NewLogger("category-repo"))
	userRepo := repository.NewPostgresUserRepository(db, logging.NewLogger("user-repo"))
	contactRepo := repository.NewPostgresContactRepository(db, logging.NewLogger("contact-repo"))
	subscriptionRepo := repository.NewPostgresSubscriptionRepository(db)

	publisher := events.NewKafkaPublisher(cfg.Kafka, logging.NewLogger("events"))
	defer publisher.Close()

	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	orderService := service.NewOrderService(orderRepo, cache, publisher, cfg)
	productService := service.NewProductService(productRepo, categoryRepo, cache.ProductView(), cfg)
	userService := service.NewUserService(userRepo, authManager)
	contactService := service.NewContactService(contactRepo, subscriptionRepo)
	statsService := service.NewStatsService(orderRepo, productRepo, contactRepo, subscriptionRepo)

	readiness := map[string]handlers.ReadinessCheck{
		"database": func(ctx context.Context) error { return db.PingContext(ctx) },
		"redis":    cache.Ping,
	}

	h := handlers.NewHandlers(
		orderService,
		productService,
		userService,
		contactService,
		statsService,
		cfg,
		readiness,
	)

	srv := server.New(h, authManager, cfg)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})
	return db, nil
}
