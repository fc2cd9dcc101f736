package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/claude-web-client/internal/config"
	"github.com/capitalize-ai/claude-web-client/internal/handler"
	"github.com/capitalize-ai/claude-web-client/internal/middleware"
	natsclient "github.com/capitalize-ai/claude-web-client/internal/nats"
	"github.com/capitalize-ai/claude-web-client/internal/service"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

type routerDeps struct {
	cfg        *config.Config
	log        *logger.Logger
	client     service.ChatClient
	orgID      string
	natsClient *natsclient.Client
	publisher  service.Publisher
}

func newRouter(d routerDeps) http.Handler {
	// Initialize services
	conversationSvc := service.NewConversationService(d.client, d.log)
	messageSvc := service.NewMessageService(d.client, d.publisher, d.log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(d.natsClient, d.orgID)
	conversationHandler := handler.NewConversationHandler(conversationSvc, d.log)
	messageHandler := handler.NewMessageHandler(messageSvc, d.log, d.cfg.UploadMaxBytes)
	streamHandler := handler.NewStreamHandler(messageSvc, d.log, d.cfg.UploadMaxBytes)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(d.log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.cfg.JWTSecret))
		r.Use(middleware.RateLimit(d.cfg.RateLimitRequests, d.cfg.RateLimitWindow))

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Create)
			r.Get("/", conversationHandler.List)
			r.With(middleware.RequireScope(middleware.ScopeAdmin)).Delete("/", conversationHandler.Reset)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Put("/", conversationHandler.Update)
				r.Delete("/", conversationHandler.Delete)

				r.Post("/messages", messageHandler.Send)
				r.Post("/stream", streamHandler.StreamWithMessage)
			})
		})
	})

	return r
}
