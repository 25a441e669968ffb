package main

import (
	"time"

	"github.com/joho/godotenv"

	"foliotrack/auth"
	"foliotrack/config"
	"foliotrack/database"
	"foliotrack/logging"
	"foliotrack/marketdata"
	"foliotrack/portfolio"
	"foliotrack/server"
	"foliotrack/storage"
	"foliotrack/token"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	store := storage.New(db)
	if err := store.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	// Redis only caches prices; the service degrades to direct provider
	// calls when it is unreachable.
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, price caching disabled")
		rdb = nil
	}

	market, err := marketdata.NewService(marketdata.Options{
		Provider:           cfg.MarketDataProvider,
		AlphaVantageAPIKey: cfg.AlphaVantageAPIKey,
	}, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("market data provider configuration failed")
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authSvc := auth.NewService(store, tokens, log)
	portfolioSvc := portfolio.NewService(store, store, store, market, log)

	router := server.NewRouter(server.Deps{
		Env:       cfg.Env,
		Log:       log,
		Tokens:    tokens,
		Auth:      authSvc,
		Portfolio: portfolioSvc,
		Market:    market,
		Started:   time.Now(),
	})

	log.Info().Str("port", cfg.Port).Str("provider", market.ProviderType()).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
