package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flowfolio/portfolio-server-go/internal/config"
	"github.com/flowfolio/portfolio-server-go/internal/database"
	"github.com/flowfolio/portfolio-server-go/internal/handler"
	"github.com/flowfolio/portfolio-server-go/internal/jobs"
	"github.com/flowfolio/portfolio-server-go/internal/mappingstore"
	"github.com/flowfolio/portfolio-server-go/internal/middleware"
	"github.com/flowfolio/portfolio-server-go/internal/redis"
	"github.com/flowfolio/portfolio-server-go/internal/repository"
	"github.com/flowfolio/portfolio-server-go/internal/service"
	"github.com/flowfolio/portfolio-server-go/internal/sse"
	"github.com/flowfolio/portfolio-server-go/internal/template"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	mappings, err := mappingstore.Open(cfg.MappingsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MappingsFile).Msg("failed to open mapping store")
	}

	registry := template.Default()

	siteRepo := repository.NewSiteRepository(db.DB)
	credentialRepo := repository.NewCredentialRepository(db.DB)
	workflowRepo := repository.NewWorkflowRepository(db.DB)
	accountRepo := repository.NewAccountRepository(db.DB)
	adminSessionRepo := repository.NewAdminSessionRepository(db.DB)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	siteService := service.NewSiteService(siteRepo, cfg.PublicBaseURL)
	mappingService := service.NewMappingService(mappings, siteRepo, registry)
	resolverService := service.NewResolverService(siteRepo, mappings, registry)
	credentialService := service.NewCredentialService(db, credentialRepo, siteRepo, cfg.EncryptionKey)
	relayService := service.NewRelayService(siteRepo, credentialService, broker, cfg.WebhookTimeout())
	workflowService := service.NewWorkflowService(workflowRepo)
	adminService := service.NewAdminService(
		adminSessionRepo, accountRepo, siteRepo, workflowRepo,
		mappingService, broker, cfg.AdminPasswordHash, cfg.AdminSessionSecret,
	)

	authMiddleware := middleware.NewAuthMiddleware(accountRepo)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client)
	adminSessionMiddleware := middleware.NewAdminSessionMiddleware(
		adminSessionRepo, cfg.AdminPasswordHash, cfg.AdminSessionSecret,
	)
	csrfMiddleware := middleware.NewCSRFMiddleware(isProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	siteHandler := handler.NewSiteHandler(siteService)
	portfolioHandler := handler.NewPortfolioHandler(resolverService, credentialService, relayService)
	credentialHandler := handler.NewCredentialHandler(credentialService, siteService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	eventsHandler := handler.NewEventsHandler(broker)
	adminHandler := handler.NewAdminHandler(
		adminService, siteService, mappingService, eventsHandler,
		adminSessionMiddleware.Handler, isProduction,
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Mount("/api/sites", siteHandler.Routes())

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Use(rateLimitMiddleware.Handler)
		r.Mount("/portfolio", portfolioHandler.Routes())
		r.Mount("/credentials", credentialHandler.Routes())
		r.Mount("/workflows", workflowHandler.Routes())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)
		r.Mount("/", adminHandler.Routes())
		r.NotFound(handler.StaticFileServer("static/admin", "/admin").ServeHTTP)
	})

	cleanupJob := jobs.NewCleanupJob(adminSessionRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
