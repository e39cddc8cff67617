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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stringlens/internal/config"
	"github.com/kailas-cloud/stringlens/internal/domain/nlquery"
	logpkg "github.com/kailas-cloud/stringlens/internal/logger"
	"github.com/kailas-cloud/stringlens/internal/metrics"
	analysisrepo "github.com/kailas-cloud/stringlens/internal/repository/analysis"
	chiTransport "github.com/kailas-cloud/stringlens/internal/transport/chi"
	analysisuc "github.com/kailas-cloud/stringlens/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/stringlens/internal/usecase/health"
	"github.com/kailas-cloud/stringlens/internal/version"
)

func main() {
	envFlag := pflag.String("env", "", "Config environment (local, dev, prod); overrides ENV")
	portFlag := pflag.Int("port", 0, "HTTP port; overrides http.port from the config file")
	showVersion := pflag.Bool("version", false, "Print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	env := config.GetEnv()
	if *envFlag != "" {
		env = *envFlag
	}

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *portFlag != 0 {
		cfg.HTTP.Port = *portFlag
		if err := cfg.Validate(); err != nil {
			panic("invalid --port: " + err.Error())
		}
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stringlens API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("rate_limit_requests", cfg.RateLimit.Requests),
		zap.Bool("auth_enabled", len(cfg.Auth.APIKeys) > 0),
	)

	// Register analysis metrics explicitly (no init())
	metrics.RegisterAnalysisMetrics()

	// Store lives for the process lifetime only
	repo := analysisrepo.New()

	stringSvc := analysisuc.New(repo, nlquery.NewInterpreter()).
		WithMaxValueLength(cfg.Store.MaxValueLength)
	healthSvc := healthuc.New(repo)

	server := chiTransport.NewServer(stringSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(chiTransport.CORSOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:         cfg.CORS.MaxAgeSec,
	}))
	r.Use(chiTransport.RateLimitMiddleware(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSec)*time.Second))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully", zap.Int("strings_discarded", repo.Count(shutdownCtx)))
}
