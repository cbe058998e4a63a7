package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"complaint-engine/internal/auth"
	"complaint-engine/internal/config"
	httphandler "complaint-engine/internal/http"
	"complaint-engine/internal/http/middleware"
	"complaint-engine/internal/ledger"
	"complaint-engine/internal/logger"
	"complaint-engine/internal/remote"
	"complaint-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, "complaint-engine")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	reportLedger := ledger.New(ledger.NewRedisStore(redisClient), cfg.Ledger.KeyPrefix, log)
	remoteClient := remote.NewHTTPClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, log)

	complaintService := service.NewComplaintService(remoteClient, reportLedger, log)
	resolutionService := service.NewResolutionService(remoteClient, log)
	refresher := service.NewRefresher(remoteClient, cfg.Feed.RefreshInterval, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refresher.Run(ctx)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(complaintService, resolutionService, refresher, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting complaint engine")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
