// Package main is the entry point for the chat gateway.
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

	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/internal/config"
	natsclient "github.com/capitalize-ai/claude-web-client/internal/nats"
	"github.com/capitalize-ai/claude-web-client/internal/service"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
	"github.com/capitalize-ai/claude-web-client/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	log.Info("starting gateway")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "claude-gateway", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Establish the chat session; an expired cookie stops startup here.
	sessionCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	client, err := claude.New(sessionCtx, cfg.Cookie(), cfg.ClientConfig(log))
	cancel()
	if err != nil {
		if errors.Is(err, claude.ErrAuthentication) {
			log.Fatal("session cookie rejected; refresh SESSION_KEY", zap.Error(err))
		}
		log.Fatal("failed to establish chat session", zap.Error(err))
	}
	log.Info("chat session established", zap.String("organization_uuid", client.OrganizationID()))

	// Connect to NATS when configured
	var natsClient *natsclient.Client
	var publisher service.Publisher
	if cfg.NATSURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		natsClient, err = natsclient.Connect(connectCtx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		cancel()
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer natsClient.Close()
		publisher = natsclient.NewPublisher(natsClient)
	} else {
		log.Info("NATS_URL not set, exchange events disabled")
	}

	router := newRouter(routerDeps{
		cfg:        cfg,
		log:        log,
		client:     client,
		orgID:      client.OrganizationID(),
		natsClient: natsClient,
		publisher:  publisher,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
