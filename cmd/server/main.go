package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ruralpay/ledger/docs"
	"github.com/ruralpay/ledger/internal/config"
	"github.com/ruralpay/ledger/internal/database"
	"github.com/ruralpay/ledger/internal/handlers"
	mW "github.com/ruralpay/ledger/internal/middleware"
	"github.com/ruralpay/ledger/internal/services"
)

// @title Branch Ledger API
// @version 1.0
// @description Customers, savings and current accounts, deposits, withdrawals and transfers for a single branch
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	envFile := flag.String("env", ".env", "optional env file")
	issueToken := flag.String("issue-token", "", "print a signed operator token for this name and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = cfg.Log.Logger(os.Stdout)

	if *issueToken != "" {
		token, err := mW.GenerateToken(cfg.JWT.SecretKey, *issueToken, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	docs.SwaggerInfo.BasePath = "/api/v1"

	ctx := context.Background()

	store, closeStore, err := database.OpenStore(ctx, cfg, zlog.Logger)
	if err != nil {
		zlog.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open store")
	}
	defer closeStore()

	redisClient := database.InitRedis(ctx, cfg.Redis, zlog.Logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	activity := services.NewActivityLogger(zlog.Logger)
	ledger := services.OpenLedger(ctx, store, activity, zlog.Logger)
	receipts := services.NewReceiptService(cfg.Ledger.Currency, cfg.Ledger.BIC)
	qrService := services.NewQRService(ledger, redisClient, cfg.QR.TTL)

	if cfg.JWT.SecretKey == "" {
		zlog.Warn().Msg("jwt.secret_key not set, mutating routes are unauthenticated")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Ledger:         handlers.NewLedgerHandler(ledger, receipts, store, zlog.Logger),
		QR:             handlers.NewQRHandler(qrService),
		JWTSecret:      cfg.JWT.SecretKey,
		SwaggerURL:     cfg.Server.SwaggerURL(),
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		zlog.Info().Str("addr", server.Addr).Str("storage", cfg.Storage.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := ledger.Save(shutdownCtx, store); err != nil {
		zlog.Error().Err(err).Msg("failed to save ledger")
		closeStore()
		os.Exit(1)
	}

	zlog.Info().Msg("server stopped, ledger saved")
}
