package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/northpoint-auto/dealdesk-backend/internal/cache"
	"github.com/northpoint-auto/dealdesk-backend/internal/config"
	"github.com/northpoint-auto/dealdesk-backend/internal/db"
	"github.com/northpoint-auto/dealdesk-backend/internal/handler"
	"github.com/northpoint-auto/dealdesk-backend/internal/queue"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
	"github.com/northpoint-auto/dealdesk-backend/internal/wizard"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting DealDesk API server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Connect to database
	database, err := db.New(cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	// Connect to the Redis option cache
	optionCache, err := cache.NewRedisOptionCache(cache.Config{
		URL: cfg.Cache.RedisURL,
		TTL: cfg.Cache.TTL,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to Redis cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer optionCache.Close()

	// Connect to the Redis dispatch queue
	queueClient, err := queue.NewRedisClient(queue.RedisConfig{
		URL:       cfg.Queue.RedisURL,
		QueueName: cfg.Queue.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to Redis queue", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer queueClient.Close()

	logger.Info("connected to Redis")

	// Initialize repositories
	dealRepo := repository.NewDealRepository(database.DB)
	bookingRepo := repository.NewBookingRepository(database.DB)
	vehicleRepo := repository.NewVehicleRepository(database.DB)
	vendorRepo := repository.NewVendorRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)
	staffRepo := repository.NewStaffRepository(database.DB)
	optionRepo := repository.NewOptionRepository(database.DB)
	notificationRepo := repository.NewNotificationRepository(database.DB)

	// Initialize services
	optionSvc := service.NewOptionService(optionRepo, optionCache, logger)
	dealSvc := service.NewDealService(dealRepo, bookingRepo, vehicleRepo, notificationRepo, queueClient, logger)
	scheduleSvc := service.NewScheduleService(bookingRepo, logger)
	vendorSvc := service.NewVendorService(vendorRepo, optionSvc, logger)
	productSvc := service.NewProductService(productRepo, optionSvc, logger)
	staffSvc := service.NewStaffService(staffRepo, optionSvc, logger)
	notificationSvc := service.NewNotificationService(notificationRepo, logger)

	// Wizard sessions for the deal form
	wizardSessions := wizard.NewManager(dealSvc, logger)

	// Initialize handlers
	dealHandler := handler.NewDealHandler(dealSvc, logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, service.NewConflictWatcher(scheduleSvc), logger)
	wizardHandler := handler.NewWizardHandler(wizardSessions, dealSvc, logger)
	optionHandler := handler.NewOptionHandler(optionSvc, logger)
	vendorHandler := handler.NewVendorHandler(vendorSvc, logger)
	productHandler := handler.NewProductHandler(productSvc, logger)
	staffHandler := handler.NewStaffHandler(staffSvc, logger)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, logger)
	healthHandler := handler.NewHealthHandler(database, optionCache, queueClient, logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(handler.RecoveryMiddleware(logger))
	r.Use(handler.LoggingMiddleware(logger))
	r.Use(handler.CORSMiddleware)

	// Register routes
	r.Get("/health", healthHandler.Health)

	r.Route("/deals", func(r chi.Router) {
		r.Post("/", dealHandler.CreateDeal)
		r.Get("/", dealHandler.ListDeals)
		r.Get("/vin-check", dealHandler.CheckVIN)
		r.Get("/{id}", dealHandler.GetDeal)
		r.Put("/{id}", dealHandler.UpdateDeal)
		r.Delete("/{id}", dealHandler.DeleteDeal)
	})

	r.Get("/schedule/conflict-check", scheduleHandler.CheckConflict)

	r.Route("/wizard", func(r chi.Router) {
		r.Post("/", wizardHandler.OpenSession)
		r.Route("/{token}", func(r chi.Router) {
			r.Get("/", wizardHandler.GetSession)
			r.Put("/customer", wizardHandler.SetCustomer)
			r.Post("/items", wizardHandler.AddLineItem)
			r.Put("/items/{localID}", wizardHandler.UpdateLineItem)
			r.Delete("/items/{localID}", wizardHandler.RemoveLineItem)
			r.Post("/next", wizardHandler.Next)
			r.Post("/back", wizardHandler.Back)
			r.Post("/save", wizardHandler.Save)
			r.Post("/cancel", wizardHandler.Cancel)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", scheduleHandler.CreateBooking)
		r.Put("/{id}", scheduleHandler.RescheduleBooking)
		r.Delete("/{id}", scheduleHandler.DeleteBooking)
	})

	r.Get("/vendors/{id}/bookings", scheduleHandler.ListVendorBookings)

	r.Route("/options", func(r chi.Router) {
		r.Get("/", optionHandler.LoadAll)
		r.Get("/{kind}", optionHandler.LoadKind)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", notificationHandler.ListNotifications)
		r.Get("/{id}", notificationHandler.GetNotification)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Route("/vendors", func(r chi.Router) {
			r.Post("/", vendorHandler.CreateVendor)
			r.Get("/", vendorHandler.ListVendors)
			r.Get("/{id}", vendorHandler.GetVendor)
			r.Put("/{id}", vendorHandler.UpdateVendor)
			r.Delete("/{id}", vendorHandler.DeleteVendor)
		})
		r.Route("/products", func(r chi.Router) {
			r.Post("/", productHandler.CreateProduct)
			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
		r.Route("/staff", func(r chi.Router) {
			r.Post("/", staffHandler.CreateStaff)
			r.Get("/", staffHandler.ListStaff)
			r.Get("/{id}", staffHandler.GetStaff)
			r.Put("/{id}", staffHandler.UpdateStaff)
			r.Delete("/{id}", staffHandler.DeleteStaff)
		})
	})

	// Create server
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("server stopped gracefully")
	}
}
