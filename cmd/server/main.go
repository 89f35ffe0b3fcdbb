package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	financeapp "github.com/distroerp/backend/internal/application/finance"
	fulfillmentapp "github.com/distroerp/backend/internal/application/fulfillment"
	orderapp "github.com/distroerp/backend/internal/application/order"
	stockapp "github.com/distroerp/backend/internal/application/stock"
	"github.com/distroerp/backend/internal/infrastructure/config"
	"github.com/distroerp/backend/internal/infrastructure/event"
	"github.com/distroerp/backend/internal/infrastructure/logger"
	"github.com/distroerp/backend/internal/infrastructure/persistence"
	"github.com/distroerp/backend/internal/interfaces/http/handler"
	"github.com/distroerp/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}

	// Repositories
	stockRepo := persistence.NewGormStockRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	fulfillmentRepo := persistence.NewGormFulfillmentRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)

	// Application services
	stockService := stockapp.NewStockService(stockRepo, movementRepo, persistence.NewGormStockTransactionScope(db.DB))
	stockService.SetEventPublisher(bus)

	orderService := orderapp.NewOrderService(orderRepo, productRepo)
	orderService.SetEventPublisher(bus)

	fulfillmentService := fulfillmentapp.NewFulfillmentService(
		fulfillmentRepo,
		shipmentRepo,
		paymentRepo,
		orderRepo,
		persistence.NewGormFulfillmentTransactionScope(db.DB),
	)
	fulfillmentService.SetEventPublisher(bus)

	// Projections
	bus.Subscribe(financeapp.NewStockLossExpenseHandler(expenseRepo, log))

	engine := router.New(cfg, log, router.Handlers{
		System:      handler.NewSystemHandler(db),
		Stock:       handler.NewStockHandler(stockService),
		Order:       handler.NewOrderHandler(orderService),
		Fulfillment: handler.NewFulfillmentHandler(fulfillmentService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown", zap.Error(err))
	}

	log.Info("stopped")
}
