// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/huddlehq/workspace-chat/internal/assist"
	"github.com/huddlehq/workspace-chat/internal/config"
	"github.com/huddlehq/workspace-chat/internal/handler"
	"github.com/huddlehq/workspace-chat/internal/llm"
	"github.com/huddlehq/workspace-chat/internal/middleware"
	natsclient "github.com/huddlehq/workspace-chat/internal/nats"
	"github.com/huddlehq/workspace-chat/internal/service"
	"github.com/huddlehq/workspace-chat/internal/store"
	"github.com/huddlehq/workspace-chat/pkg/logger"
	"github.com/huddlehq/workspace-chat/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var log *logger.Logger
	var err error
	if cfg.Environment == "development" {
		log, err = logger.NewDevelopment()
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "workspace-chat", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the persistent store
	var st store.Store
	if cfg.StoreInMemory {
		st = store.NewMemoryStore()
	} else {
		st, err = store.OpenPebble(cfg.StorePath)
		if err != nil {
			log.Error("failed to open store", zap.Error(err))
			os.Exit(1)
		}
	}
	defer st.Close()

	// Connect to NATS
	natsClient, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsClient.Close()

	// Ensure the change-feed stream exists
	events := natsclient.NewEventBus(natsClient)
	if err := events.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", zap.Error(err))
		os.Exit(1)
	}

	// Initialize LLM client; assistance degrades to fallbacks without one
	var llmClient llm.Client
	switch {
	case cfg.DefaultLLM == "anthropic" && cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, assistance disabled", zap.Error(err))
		llmClient = nil
	}

	// Initialize services
	workspaceSvc := service.NewWorkspaceService(st, events, log)
	presenceSvc := service.NewPresenceService()
	assistSvc := assist.NewService(llmClient, log, cfg.AssistTimeout, cfg.ToneDebounceWindow)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceSvc, log)
	channelHandler := handler.NewChannelHandler(workspaceSvc, log)
	messageHandler := handler.NewMessageHandler(workspaceSvc, assistSvc, log)
	documentHandler := handler.NewDocumentHandler(workspaceSvc, log)
	presenceHandler := handler.NewPresenceHandler(presenceSvc, log)
	assistHandler := handler.NewAssistHandler(assistSvc, workspaceSvc, log)
	streamHandler := handler.NewStreamHandler(workspaceSvc, events, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", workspaceHandler.Create)
			r.Get("/", workspaceHandler.List)

			r.Route("/{workspaceID}", func(r chi.Router) {
				r.Get("/", workspaceHandler.Get)

				r.Route("/channels", func(r chi.Router) {
					r.Post("/", channelHandler.Create)
					r.Get("/", channelHandler.List)

					r.Route("/{channelID}", func(r chi.Router) {
						r.Get("/", channelHandler.Get)
						r.Post("/read", channelHandler.MarkRead)

						r.Get("/messages", messageHandler.List)
						r.Post("/messages", messageHandler.Send)
						r.Get("/messages/pinned", messageHandler.ListPinned)

						r.Route("/messages/{messageID}", func(r chi.Router) {
							r.Get("/replies", messageHandler.ListReplies)
							r.Post("/replies", messageHandler.Reply)
							r.Post("/reactions", messageHandler.AddReaction)
							r.Delete("/reactions/{emoji}", messageHandler.RemoveReaction)
							r.Put("/pin", messageHandler.Pin)
							r.Delete("/pin", messageHandler.Unpin)
						})

						r.Get("/documents", documentHandler.List)
						r.Post("/documents", documentHandler.Add)
						r.Get("/documents/pinned", documentHandler.ListPinned)
						r.Put("/documents/{documentID}/pin", documentHandler.Pin)
						r.Delete("/documents/{documentID}/pin", documentHandler.Unpin)

						r.Get("/stream", streamHandler.Stream)
					})
				})

				// Assistance routes carry a per-user limit on top of the
				// workspace limit: upstream quota is the scarce resource.
				r.Route("/assist", func(r chi.Router) {
					r.Use(middleware.UserRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
					r.Post("/rewrite", assistHandler.Rewrite)
					r.Post("/tone", assistHandler.Tone)
					r.Post("/answer", assistHandler.Answer)
				})
			})
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/presence", presenceHandler.Me)
			r.Put("/presence", presenceHandler.UpdatePresence)
			r.Put("/status", presenceHandler.UpdateStatus)
			r.Get("/thread", presenceHandler.GetThread)
			r.Put("/thread", presenceHandler.OpenThread)
			r.Delete("/thread", presenceHandler.CloseThread)
		})

		r.Get("/presence", presenceHandler.List)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
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
