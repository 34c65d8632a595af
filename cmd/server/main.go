package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pageforge/config"
	"pageforge/internal/ai"
	"pageforge/internal/api"
	"pageforge/internal/common/httpclient"
	"pageforge/internal/common/logger"
	"pageforge/internal/notify"
	"pageforge/internal/project"
	"pageforge/internal/publish"
	"pageforge/internal/publish/githost"
	"pageforge/internal/verify"
)

func main() {
	// Load .env before viper reads the environment. A missing file is normal
	// in production.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file.")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	lg := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)

	// Process-wide clients, initialized once and read-only afterwards.
	generator := ai.NewGenerator(cfg.AIPipeToken, cfg.AIPipeURL, cfg.AIModel, lg)
	materializer := project.NewMaterializer(lg)
	host := githost.New(cfg.GitHubToken, cfg.GitHubOwner, lg)

	pubOpts := publish.Options{
		Token:       cfg.GitHubToken,
		Owner:       cfg.GitHubOwner,
		PagesDomain: cfg.PagesDomain,
	}
	var publisher publish.Publisher
	switch cfg.PublishStrategy {
	case config.StrategySubdir:
		publisher = publish.NewSubdirPublisher(host, pubOpts, cfg.BaseRepo, lg)
	default:
		publisher = publish.NewRepoPublisher(host, pubOpts, lg)
	}

	verifier := verify.NewVerifier(
		httpclient.New(10*time.Second),
		cfg.VerifyMaxAttempts,
		cfg.VerifyPollInterval,
		lg,
	)
	notifier := notify.NewNotifier(
		httpclient.New(cfg.NotifyTimeout),
		cfg.NotifyMaxAttempts,
		cfg.NotifyInitialDelay,
		lg,
	)

	handler := api.NewAPIHandler(generator, materializer, publisher, verifier, notifier, api.Options{
		Allowed:       cfg.Allowed(),
		Owner:         cfg.GitHubOwner,
		Budget:        cfg.RequestBudget,
		NotifyReserve: notifier.WorstCase(cfg.NotifyTimeout),
	}, lg)

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(api.RequestID())

	api.RegisterRoutes(router, handler)

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// The write timeout must outlast a full pipeline run.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestBudget + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("starting API server", "address", cfg.ServerAddress, "strategy", cfg.PublishStrategy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	lg.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.WithError(err).Error("forced shutdown")
	} else {
		lg.Info("server stopped gracefully")
	}
}
