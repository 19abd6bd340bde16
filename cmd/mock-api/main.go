package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caplink/userpulse/internal/mockapi"
	"github.com/caplink/userpulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr       = ":3000"
	defaultUsers      = 10
	defaultPosts      = 100
	defaultSeed       = 42
	defaultFailStatus = 503
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	var (
		addr       = flag.String("addr", defaultAddr, "Listen address")
		users      = flag.Int("users", defaultUsers, "Number of user fixtures to generate")
		posts      = flag.Int("posts", defaultPosts, "Number of post fixtures to generate")
		seed       = flag.Int64("seed", defaultSeed, "Seed for deterministic fixtures")
		failFirst  = flag.Int("fail-first", 0, "Answer the first N collection requests with the failure status")
		failStatus = flag.Int("fail-status", defaultFailStatus, "Status code used for injected failures")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		mockapi.ShowHelp()
		return
	}

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mockapi.New(
		mockapi.WithUserCount(*users),
		mockapi.WithPostCount(*posts),
		mockapi.WithSeed(*seed),
		mockapi.WithFailFirst(*failFirst),
		mockapi.WithFailStatus(*failStatus),
	)

	mux := http.NewServeMux()
	server.Register(ctx, mux)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting mock API server", logger.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down mock API server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "mock API server stopped")
}
