package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"Inkwell/internal/config"
	"Inkwell/internal/mockapi"
)

func main() {
	cfg := config.MockAPIFromEnv()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	backend, err := mockapi.New(cfg, logger)
	if err != nil {
		log.Fatal("Failed to configure mock backend:", err)
	}
	defer backend.Close()

	// Comma separated category names to create at startup
	for _, name := range strings.Split(os.Getenv("MOCKAPI_SEED_CATEGORIES"), ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		if _, err := backend.Store().CreateCategory(name); err != nil {
			logger.Warn("failed to seed category", "name", name, "error", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	fmt.Printf("Inkwell mock backend starting on port %d\n", cfg.Port)
	fmt.Printf("API base URL: http://localhost:%d/api\n", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
