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

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/config"
	"github.com/giygas/prescription-assistant/data"
	"github.com/giygas/prescription-assistant/handlers"
	"github.com/giygas/prescription-assistant/health"
	"github.com/giygas/prescription-assistant/logging"
	"github.com/giygas/prescription-assistant/metrics"
	"github.com/giygas/prescription-assistant/scheduler"
	"github.com/giygas/prescription-assistant/server"
	"github.com/giygas/prescription-assistant/validation"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.InitLoggerWithConfig("logs", cfg)
	defer logging.Close()

	logging.Info("Configuration loaded",
		"env", cfg.Env.String(),
		"address", cfg.Address,
		"port", cfg.Port,
		"session_ttl", cfg.SessionTTL.String())

	store := data.NewPrescriptionContainer()
	store.SetServerStartTime(time.Now())

	validator := validation.NewInputValidator(cfg.MaxMedicines, cfg.MaxMessageLength)
	resolver := assistant.NewQueryResolver(assistant.WithObserver(metrics.ObserveAnswer))

	evictionScheduler := scheduler.NewScheduler(store, cfg.SessionTTL, cfg.EvictionInterval)
	if err := evictionScheduler.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	healthChecker := health.NewHealthChecker(store, evictionScheduler, cfg.EvictionInterval)
	httpHandler := handlers.NewHTTPHandler(store, validator, resolver, healthChecker,
		handlers.WithChatLimiter(server.ClientRateLimiter()))
	srv := server.NewServer(cfg, httpHandler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	exitCode := 0
	select {
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	case err := <-serverErr:
		logging.Error("Server failed", "error", err)
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		exitCode = 1
	}
	evictionScheduler.Stop()

	logging.Info("Prescription assistant stopped", "prescriptions_dropped", store.Count())

	if exitCode != 0 {
		cancel()
		logging.Close()
		os.Exit(exitCode)
	}
}
