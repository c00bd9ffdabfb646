package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"despesas/internal/amqp"
	"despesas/internal/auth"
	"despesas/internal/cache"
	"despesas/internal/catalog"
	"despesas/internal/cli"
	"despesas/internal/core"
	apphttp "despesas/internal/http"
	"despesas/internal/ledger"
	"despesas/internal/planner"
	"despesas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	authClient := auth.NewClient(auth.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		RedirectURL:  cfg.OAuthRedirectURL,
		Scopes:       cfg.Scopes(),
		TokenFile:    cfg.OAuthTokenFile,
	})
	tokens, err := authClient.TokenSource(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			logger.Error("No stored token, run oauth-init first", "token_file", cfg.OAuthTokenFile)
		} else {
			logger.Error("Failed to load token", "error", err)
		}
		os.Exit(1)
	}

	ledgerClient := ledger.NewClient(cfg.LedgerBaseURL, tokens)

	var source catalog.Source
	switch cfg.CatalogSource {
	case "api":
		source = catalog.NewAPISource(ledgerClient, ledger.CategoryPageSize)
		logger.Info("Using remote category catalog", "page_size", ledger.CategoryPageSize)
	default:
		source = catalog.NewFileSource(cfg.CatalogFile)
		logger.Info("Using file category catalog", "path", cfg.CatalogFile)
	}
	catalogCache := cache.NewLRUCache[[]core.Category](cfg.CatalogCacheSize, cfg.CatalogCacheTTL)
	source = catalog.NewCachedSource(source, catalogCache, cfg.OAuthClientID)

	cacheManager := cache.NewManager()
	cacheManager.Register(catalogCache)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	var queryPlanner services.QueryPlanner
	if cfg.PlannerEnabled {
		genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
		})
		if err != nil {
			logger.Error("Failed to create genai client, planner disabled", "error", err)
		} else {
			queryPlanner = planner.NewPlanner(genaiClient, cfg.GeminiModel)
			logger.Info("Planner enabled", "model", cfg.GeminiModel)
		}
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.AuditPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, audit events disabled", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	service := services.NewAnalysisService(source, ledgerClient, queryPlanner, repo, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, service, cfg.RateLimitPerMin)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()

		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting despesas server",
		"port", cfg.Port,
		"catalog_source", cfg.CatalogSource,
		"planner_enabled", queryPlanner != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-shutdownCtx.Done()
	logger.Info("Server stopped gracefully")
}
