package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"adpulse/internal/amazon"
	"adpulse/internal/api"
	"adpulse/internal/config"
	"adpulse/internal/database"
	"adpulse/internal/events"
	"adpulse/internal/export"
	"adpulse/internal/logging"
	"adpulse/internal/metrics"
	"adpulse/internal/models"
	"adpulse/internal/notify"
	"adpulse/internal/repository"
	"adpulse/internal/service"
	"adpulse/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	creds, err := seedAccounts(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	redisClient, statusRepo := initStatusRepository(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus()
	adsClient := amazon.NewClient(cfg.Ads, creds, db, logging.Component(logger, "ads-client"))

	retryPolicy := worker.RetryPolicy{
		MaxAttempts:   cfg.Scheduler.Retry.MaxAttempts,
		InitialDelay:  time.Duration(cfg.Scheduler.Retry.BaseDelayMs) * time.Millisecond,
		MaxDelay:      time.Duration(cfg.Scheduler.Retry.MaxDelayMs) * time.Millisecond,
		BackoffFactor: 2,
	}

	syncWorker := worker.NewSyncWorker(db, adsClient, creds, eventBus, statusRepo, nil, worker.Options{
		Tick:                  cfg.Scheduler.Tick(),
		MaxConcurrentAccounts: cfg.Scheduler.MaxConcurrentAccounts,
		Retry:                 retryPolicy,
	}, logging.Component(logger, "sync-worker"))

	locks := syncWorker.Locks()
	validationService := service.NewValidationService(db, adsClient, eventBus, retryPolicy, logging.Component(logger, "validation"))
	executionService := service.NewExecutionService(db, adsClient, eventBus, locks, retryPolicy, logging.Component(logger, "execution"))
	rollbackService := service.NewRollbackService(db, adsClient, eventBus, locks, retryPolicy, logging.Component(logger, "rollback"))

	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram, logging.Component(logger, "telegram"))
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			notifier.Subscribe(eventBus)
		}
	}

	if cfg.API.Enabled {
		exporter := export.NewExporter(cfg.Exports.Path, logging.Component(logger, "export"))
		apiServer := api.NewHTTPServer(cfg.API, db, syncWorker, validationService, executionService, rollbackService, exporter, logging.Component(logger, "api"))
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = apiServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info().Msg("Планировщик запущен...")
	syncWorker.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.Component(baseLogger, "scheduler-main")
	return cfg, &logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

// seedAccounts загружает аккаунты и креды из accounts.yaml и создает
// дефолтные настройки движка для новых аккаунтов
func seedAccounts(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) (*repository.CredentialStore, error) {
	accountsPath := os.Getenv("ACCOUNTS_PATH")
	if accountsPath == "" {
		accountsPath = "configs/accounts.yaml"
	}

	accounts, creds, err := repository.LoadSeedFile(accountsPath)
	if err != nil {
		logger.Error().Err(err).Str("path", accountsPath).Msg("Ошибка чтения файла аккаунтов")
		return nil, err
	}

	store := repository.NewCredentialStore()
	for _, c := range creds {
		store.Put(c)
	}

	for _, account := range accounts {
		if err := db.UpsertAccount(ctx, account); err != nil {
			logger.Error().Err(err).Str("account_id", account.ID).Msg("upsert account")
			return nil, err
		}

		if _, err := db.GetExecutionConfig(ctx, account.ID); err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				return nil, err
			}
			// Новый аккаунт начинает в ручном режиме, включают явно.
			defaults := &models.KeywordExecutionConfig{
				AccountID:       account.ID,
				IsEnabled:       true,
				ExecutionMode:   models.ExecutionModeManual,
				ACOSThreshold:   cfg.Engine.DefaultACOSThreshold,
				SpendThreshold:  cfg.Engine.DefaultSpendThreshold,
				ClicksThreshold: cfg.Engine.DefaultClicksThreshold,
				LookbackDays:    cfg.Engine.DefaultLookbackDays,
			}
			if err := db.SaveExecutionConfig(ctx, defaults); err != nil {
				return nil, err
			}
			logger.Info().Str("account_id", account.ID).Msg("default execution config created")
		}
	}

	logger.Info().Int("accounts", len(accounts)).Msg("accounts seeded")
	return store, nil
}

func initStatusRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverStatusRepository) {
	fallback := repository.NewMemoryStatusRepository()

	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable")
		}
	}

	primary := repository.NewRedisStatusRepository(redisClient, 10*time.Minute)
	return redisClient, repository.NewFailoverStatusRepository(primary, fallback, logging.Component(logger, "status-repo"))
}
