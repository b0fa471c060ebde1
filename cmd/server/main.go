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

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"scenariogen.app/server/common/id"
	"scenariogen.app/server/common/logger"
	"scenariogen.app/server/common/otel"
	"scenariogen.app/server/core/config"
	"scenariogen.app/server/internal/http/middleware"
	httprouter "scenariogen.app/server/internal/http/router"
	"scenariogen.app/server/internal/service"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "scenariogen starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	if !cfg.OpenAI.Enabled() {
		slog.WarnContext(ctx, "OPENAI_API_KEY not set, openai requests will fail until configured")
	}
	slog.InfoContext(ctx, "backend defaults",
		"openai_model", cfg.OpenAI.Model,
		"ollama_url", cfg.Ollama.BaseURL,
		"ollama_model", cfg.Ollama.Model,
		"generation_timeout", cfg.Generation.Timeout.String())

	services := service.NewServices(service.ServicesConfig{
		Config: cfg,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(cfg.Generation.Timeout),
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.HTTP.AllowedOrigins, cfg.HTTP.TraceHeaderName))

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		TraceHeaderName: cfg.HTTP.TraceHeaderName,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
	})

	return router
}

// writeTimeout leaves room past the generation deadline for the failure
// response to be written. Without a deadline the write is unbounded too.
func writeTimeout(generation time.Duration) time.Duration {
	if generation <= 0 {
		return 0
	}
	return generation + 15*time.Second
}

const banner = `
 ____   ____ _____ _   _    _    ____  ___ ___   ____ _____ _   _
/ ___| / ___| ____| \ | |  / \  |  _ \|_ _/ _ \ / ___| ____| \ | |
\___ \| |   |  _| |  \| | / _ \ | |_) || | | | | |  _|  _| |  \| |
 ___) | |___| |___| |\  |/ ___ \|  _ < | | |_| | |_| | |___| |\  |
|____/ \____|_____|_| \_/_/   \_\_| \_\___\___/ \____|_____|_| \_|
`
