package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/wayofglory/shop/internal/app"
	"github.com/wayofglory/shop/internal/app/handlers"
	"github.com/wayofglory/shop/internal/config"
	"github.com/wayofglory/shop/internal/finance"
	"github.com/wayofglory/shop/internal/jwt-new/jwtmiddleware"
	"github.com/wayofglory/shop/internal/lib/logger"
	"github.com/wayofglory/shop/internal/lib/logger/handlers/urllog"
	"github.com/wayofglory/shop/internal/lib/openai"
	"github.com/wayofglory/shop/internal/service"
	"github.com/wayofglory/shop/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	staffRepo := storage.NewStaffRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	emailLogRepo := storage.NewEmailLogRepository(application.DB)

	calculator := finance.NewCalculator(cfg.Finance.TaxRate, cfg.Finance.ProductMargin)
	completions := openai.NewClient(cfg.OpenAI)
	mailer := service.LogMailer{Log: application.Logger}

	authService := service.NewAuthService(application.Logger, staffRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute)
	orderService := service.NewOrderService(application.Logger, orderRepo, calculator)
	checkoutService := service.NewCheckoutService(application.Logger, application.DB, orderRepo, productRepo, calculator)
	emailService := service.NewEmailService(application.Logger, orderRepo, emailLogRepo, completions, mailer)

	// storefront surface
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, productRepo))
	router.Post("/api/checkout", handlers.CheckoutHandler(application.Logger, checkoutService))

	// admin surface, staff JWT required
	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		r.Get("/api/admin/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Get("/api/admin/orders/{id}", handlers.GetOrderHandler(application.Logger, orderService))
		r.Patch("/api/admin/orders/{id}/status", handlers.UpdateStatusHandler(application.Logger, orderService))
		r.Delete("/api/admin/orders/{id}", handlers.DeleteOrderHandler(application.Logger, orderService))
		r.Get("/api/admin/orders/{id}/email-logs", handlers.EmailLogsHandler(application.Logger, emailService))
		r.Post("/api/admin/orders/{id}/send-email", handlers.SendEmailHandler(application.Logger, emailService))
		r.Post("/api/admin/generate-email", handlers.GenerateEmailHandler(application.Logger, emailService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
