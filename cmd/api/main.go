package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Swapnil-code-maker/swiftstore-backend/api/controllers"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/routes"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/assignment"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/auth"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/complaints"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/delivery"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/geocode"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/ledger"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/orders"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/products"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/ratings"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/users"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/auth/session"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/config"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/metrics"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/migrate"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deliveryMetrics := metrics.NewDeliveryMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	complaintsRepo := complaints.NewRepository(dbClient.DB())
	ratingsRepo := ratings.NewRepository(dbClient.DB())
	deliveryRepo := delivery.NewRepository(dbClient.DB())
	assignmentRepo := assignment.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	assignmentService, err := assignment.NewService(assignmentRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		ordersRepo,
		dbClient,
		outboxSvc,
		products.NewInventory(),
		assignmentService,
		orders.NewProductSource(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledgerRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	deliveryService, err := delivery.NewService(
		deliveryRepo,
		ordersRepo,
		dbClient,
		outboxSvc,
		ledgerService,
		redisClient,
		deliveryMetrics,
		cfg.Delivery.OTPValidity,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	complaintsService, err := complaints.NewService(complaintsRepo, ordersRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create complaints service", err)
		os.Exit(1)
	}

	ratingsService, err := ratings.NewService(ratingsRepo, ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ratings service", err)
		os.Exit(1)
	}

	geocodeService, err := geocode.NewServiceFromConfig(cfg.Geocode)
	if err != nil {
		logg.Error(context.Background(), "failed to create geocode service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		Registry: registry,
		Pingers: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
		},
		Sessions:        sessionManager,
		AuthService:     authService,
		RegisterService: registerService,
		Products:        productsService,
		Orders:          ordersService,
		Delivery:        deliveryService,
		Ledger:          ledgerService,
		Complaints:      complaintsService,
		Ratings:         ratingsService,
		Geocode:         geocodeService,
		Users:           usersService,
	})

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
