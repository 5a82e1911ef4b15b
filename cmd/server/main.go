package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rLg1290/7crm-sub003/internal/cache"
	"github.com/rLg1290/7crm-sub003/internal/handler"
	"github.com/rLg1290/7crm-sub003/internal/logging"
	"github.com/rLg1290/7crm-sub003/internal/providers"
	"github.com/rLg1290/7crm-sub003/internal/ratelimit"
	"github.com/rLg1290/7crm-sub003/internal/session"
)

type Config struct {
	Port            string
	Env             string
	ProviderURL     string
	ProviderAPIKey  string
	ProviderTimeout time.Duration
	CacheBackend    string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	DatabaseDSN     string
	DefaultMarkup   float64
	SearchRateLimit float64
	SearchRateBurst int
	GlobalRateLimit float64
	GlobalRateBurst int
}

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := loadConfig()
	logging.Init("flightquote", cfg.Env)

	provider, err := providers.NewHTTPProvider(providers.HTTPConfig{
		Name:    "search-api",
		URL:     cfg.ProviderURL,
		APIKey:  cfg.ProviderAPIKey,
		Timeout: cfg.ProviderTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.CacheBackend).Msg("failed to open search cache")
	}
	defer store.Close()

	limiter := ratelimit.NewActorLimiter(ratelimit.Config{
		RequestsPerSecond:       cfg.SearchRateLimit,
		BurstSize:               cfg.SearchRateBurst,
		GlobalRequestsPerSecond: cfg.GlobalRateLimit,
		GlobalBurstSize:         cfg.GlobalRateBurst,
	})

	registry := session.NewRegistry(session.Dependency{
		Provider:      provider,
		Cache:         cache.NewResultCache(store),
		Limiter:       limiter,
		TickInterval:  time.Second,
		DefaultMarkup: cfg.DefaultMarkup,
	})
	defer registry.Close()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go registry.Run(sweepCtx, time.Minute)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, handler.ActorHeader},
	}))

	api := e.Group("/api/v1")
	handler.NewQuoteHandler(registry).Register(api)
	e.GET("/health", handler.HealthHandler)

	go func() {
		log.Info().Str("port", cfg.Port).Str("cache", cfg.CacheBackend).Msg("starting flight quote server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func openStore(cfg Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "redis":
		store, err := cache.NewRedisStore(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite", "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := cache.OpenSQLStore(ctx, cache.SQLConfig{
			Driver: cfg.CacheBackend,
			DSN:    cfg.DatabaseDSN,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return cache.NewMemoryStore(), nil
	}
}

func loadConfig() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ProviderURL:     getEnv("PROVIDER_URL", "http://localhost:9000/flights/search"),
		ProviderAPIKey:  getEnv("PROVIDER_API_KEY", ""),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),
		CacheBackend:    getEnv("CACHE_BACKEND", "memory"),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		DatabaseDSN:     getEnv("DATABASE_DSN", "flightquote.db"),
		DefaultMarkup:   getEnvFloat("DEFAULT_MARKUP_RATE", 0),
		SearchRateLimit: getEnvFloat("SEARCH_RATE_LIMIT", 1),
		SearchRateBurst: getEnvInt("SEARCH_RATE_BURST", 5),
		GlobalRateLimit: getEnvFloat("SEARCH_GLOBAL_RATE_LIMIT", 20),
		GlobalRateBurst: getEnvInt("SEARCH_GLOBAL_RATE_BURST", 40),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
