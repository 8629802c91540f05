// Package main is the entry point for the travel agent service.
// @title Travel Agent API
// @version 1.0
// @description Travel planning chat assistant with a travel-only content guard and function calling.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	_ "github.com/tripwise/travel-agent/docs"
	"github.com/tripwise/travel-agent/internal/api/handlers"
	"github.com/tripwise/travel-agent/internal/api/middleware"
	"github.com/tripwise/travel-agent/internal/api/routes"
	"github.com/tripwise/travel-agent/internal/config"
	"github.com/tripwise/travel-agent/internal/core/cache"
	"github.com/tripwise/travel-agent/internal/core/docdb"
	"github.com/tripwise/travel-agent/internal/core/vault"
	memorycache "github.com/tripwise/travel-agent/internal/infrastructure/cache/memory"
	rediscache "github.com/tripwise/travel-agent/internal/infrastructure/cache/redis"
	"github.com/tripwise/travel-agent/internal/infrastructure/docdb/mongodb"
	dotenvvault "github.com/tripwise/travel-agent/internal/infrastructure/vault/dotenv"
	ssmvault "github.com/tripwise/travel-agent/internal/infrastructure/vault/ssm"
	"github.com/tripwise/travel-agent/internal/pkg/encryption"
	"github.com/tripwise/travel-agent/internal/pkg/logging"
	"github.com/tripwise/travel-agent/internal/services/audit"
	"github.com/tripwise/travel-agent/internal/services/dialogue"
	"github.com/tripwise/travel-agent/internal/services/guard"
	"github.com/tripwise/travel-agent/internal/services/intent"
	openaiclassifier "github.com/tripwise/travel-agent/internal/services/intent/openai"
	"github.com/tripwise/travel-agent/internal/services/lookup"
	"github.com/tripwise/travel-agent/internal/services/session"
)

const encryptionKeySecret = "SECRETS_ENCRYPTION_KEY"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Configure(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}
	log.Info().Msg("server exited")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vaultClient, err := createVault(ctx, cfg.Vault)
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	defer vaultClient.Close()

	encryptor, err := createEncryptor(ctx, cfg.Vault, vaultClient)
	if err != nil {
		return fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cacheClient.Close()

	store, err := session.NewStore(&session.Config{
		Cache:              cacheClient,
		Encryptor:          encryptor,
		HistoryCap:         cfg.Session.HistoryCap,
		ViolationThreshold: cfg.Session.ViolationThreshold,
		InactivityTimeout:  cfg.Session.InactivityTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// The service never serves traffic without its datasets.
	lookupSvc, err := lookup.Load(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("failed to load travel datasets: %w", err)
	}
	log.Info().Int("cities", len(lookupSvc.Cities())).Str("dir", cfg.Data.Dir).Msg("travel datasets loaded")

	contentGuard, err := createGuard(cfg.Guard)
	if err != nil {
		return fmt.Errorf("failed to initialize content guard: %w", err)
	}

	catalog := intent.DefaultCatalog()
	classifier, err := createClassifier(ctx, cfg, vaultClient, catalog, lookupSvc.Cities())
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}

	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		return fmt.Errorf("failed to initialize document db: %w", err)
	}
	var (
		recorder    audit.Recorder = audit.Nop{}
		auditWriter *audit.Writer
	)
	if docDBClient != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = docDBClient.Close(closeCtx)
		}()
		auditWriter = audit.NewWriter(docDBClient.GuardEvents(), audit.WriterConfig{
			Workers:   cfg.DocDB.AuditWorkers,
			QueueSize: cfg.DocDB.AuditQueueSize,
		})
		recorder = auditWriter
	}

	orchestrator, err := dialogue.New(dialogue.Config{
		Store:             store,
		Guard:             contentGuard,
		Classifier:        classifier,
		Catalog:           catalog,
		Lookup:            lookupSvc,
		Recorder:          recorder,
		MaxMessages:       cfg.Session.MaxMessages,
		OffTopicWarnLimit: cfg.Session.OffTopicWarnLimit,
		ClassifyTimeout:   cfg.OpenAI.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize orchestrator: %w", err)
	}

	gin.SetMode(cfg.Server.GinMode)
	router := setupRouter(cfg, cacheClient, docDBClient, orchestrator, lookupSvc, catalog)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return session.NewSweeper(store, cfg.Session.SweepInterval).Run(gctx)
	})
	if auditWriter != nil {
		g.Go(func() error {
			return auditWriter.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// createVault creates a vault based on the configuration.
func createVault(ctx context.Context, cfg config.VaultConfig) (vault.Vault, error) {
	switch vault.Type(cfg.Type) {
	case vault.TypeDotEnv:
		return dotenvvault.NewVault(), nil
	case vault.TypeSSM:
		return ssmvault.NewFromRegion(ctx, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unsupported vault type: %s", cfg.Type)
	}
}

// readSecret returns an empty string when the secret is not set.
func readSecret(ctx context.Context, v vault.Vault, key string) (string, error) {
	secret, err := v.GetSecret(ctx, key)
	if errors.Is(err, vault.ErrSecretNotFound) {
		return "", nil
	}
	return secret, err
}

// createEncryptor creates the encryptor for session state at rest.
func createEncryptor(ctx context.Context, cfg config.VaultConfig, v vault.Vault) (encryption.Encryptor, error) {
	key := cfg.EncryptionKey
	if key == "" {
		secret, err := readSecret(ctx, v, encryptionKeySecret)
		if err != nil {
			return nil, err
		}
		key = secret
	}
	if key == "" {
		log.Warn().Msg("SECRETS_ENCRYPTION_KEY not set, session state is stored unencrypted")
	}
	return encryption.New(key)
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (cache.Client, error) {
	switch cache.Type(cfg.Type) {
	case cache.TypeMemory:
		return memorycache.NewClient(), nil
	case cache.TypeRedis:
		return rediscache.NewClient(rediscache.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// createDocDBClient returns nil when guard auditing is disabled.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	switch docdb.Type(cfg.Type) {
	case docdb.TypeNone:
		return nil, nil
	case docdb.TypeMongoDB:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return mongodb.NewClient(connectCtx, &mongodb.ClientConfig{
			URI:            cfg.URI,
			DatabaseName:   cfg.Database,
			EventRetention: cfg.AuditRetention,
		})
	default:
		return nil, fmt.Errorf("unsupported docdb type: %s", cfg.Type)
	}
}

func createGuard(cfg config.GuardConfig) (*guard.Guard, error) {
	var vocab *guard.Vocabulary
	if cfg.VocabularyPath != "" {
		v, err := guard.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			return nil, err
		}
		vocab = v
	}
	return guard.New(guard.Config{
		Threshold:  cfg.RelevanceThreshold,
		Vocabulary: vocab,
	})
}

// createClassifier falls back to a static reply when no API key is configured.
func createClassifier(ctx context.Context, cfg *config.Config, v vault.Vault, catalog *intent.Catalog, cities []string) (intent.Classifier, error) {
	apiKey, err := readSecret(ctx, v, cfg.Vault.APIKeyParameter)
	if err != nil {
		return nil, fmt.Errorf("failed to read language model api key: %w", err)
	}
	if apiKey == "" {
		log.Warn().Msg("no language model api key configured, using static replies")
		return intent.NewStatic(), nil
	}

	return openaiclassifier.New(openaiclassifier.Config{
		APIKey:      apiKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Catalog:     catalog,
		Cities:      cities,
	})
}

// setupRouter creates and configures the Gin router.
func setupRouter(
	cfg *config.Config,
	cacheClient cache.Client,
	docDBClient docdb.Client,
	chat handlers.ChatService,
	lookupSvc *lookup.Service,
	catalog *intent.Catalog,
) *gin.Engine {
	router := gin.New()

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		})
	}

	routesCfg := &routes.Config{
		HealthHandler: handlers.NewHealthHandler(cacheClient, docDBClient),
		ChatHandler:   handlers.NewChatHandler(chat),
		TravelHandler: handlers.NewTravelHandler(lookupSvc, catalog),
		RateLimiter:   limiter,
		EnableDocs:    true,
	}

	routes.SetupWithMiddleware(
		router,
		routesCfg,
		middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins),
		middleware.NewLoggingMiddleware(),
		middleware.NewErrorMiddleware(),
	)
	return router
}
