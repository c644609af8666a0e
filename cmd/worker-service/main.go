package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/config"
	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/worker"
	"github.com/cuongbtq/jobcard-service/internal/worker/storage"
	"github.com/cuongbtq/jobcard-service/shared/database"
	"github.com/cuongbtq/jobcard-service/shared/logger"
	"github.com/cuongbtq/jobcard-service/shared/rabbitmq"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	workerID := cfg.Worker.ID
	if workerID == "" {
		workerID = "worker-" + uuid.NewString()[:8]
	}

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("worker_id", workerID),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, _, closeStore, err := initStore(ctx, &cfg.Storage, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStore()

	appLogger.Info("Document store ready")

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, cfg.RabbitMQ.Queue.Name, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	appLogger.Info("RabbitMQ connection established")

	processor := worker.NewNotificationProcessor(
		storage.NewStorage(store, appLogger.Component("storage")),
		cfg.Company.CurrencySymbol,
		appLogger.Component("processor"),
	)

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:        appLogger.Logger,
		Source:        rabbitClient,
		Processor:     processor,
		WorkerID:      workerID,
		QueueName:     cfg.RabbitMQ.Queue.Name,
		Concurrency:   cfg.Worker.Concurrency,
		QueueSize:     cfg.Worker.QueueSize,
		PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
		EventTimeout:  cfg.Worker.EventTimeout,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Worker service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case runErr = <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", runErr),
		)
	}

	cancel()

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-time.After(cfg.Worker.ShutdownTimeout):
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Worker service shutdown complete")
	return runErr
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initStore opens the configured document store. The returned health check is nil
// for backends without a cheap liveness probe.
func initStore(ctx context.Context, cfg *config.StorageConfig, log *slog.Logger) (docstore.Store, func(context.Context) error, func(), error) {
	switch cfg.Driver {
	case config.StorageDriverPostgres, config.StorageDriverSQLite:
		dbCfg := &database.Config{
			Driver:          database.DriverPostgres,
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			Database:        cfg.Postgres.Database,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
		}
		if cfg.Driver == config.StorageDriverSQLite {
			dbCfg = &database.Config{Driver: database.DriverSQLite, Path: cfg.SQLite.Path, MaxOpenConns: 1}
		}

		dbClient, err := database.NewClient(dbCfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		store := docstore.NewSQLStore(dbClient.GetDB(), log)
		if err := store.EnsureSchema(ctx); err != nil {
			dbClient.Close()
			return nil, nil, nil, err
		}
		return store, dbClient.HealthCheck, func() { dbClient.Close() }, nil

	case config.StorageDriverDynamoDB:
		client, err := docstore.NewDynamoClient(ctx, docstore.DynamoConfig{
			Region:          cfg.DynamoDB.Region,
			Endpoint:        cfg.DynamoDB.Endpoint,
			AccessKeyID:     cfg.DynamoDB.AccessKeyID,
			SecretAccessKey: cfg.DynamoDB.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store := docstore.NewDynamoStore(client, cfg.DynamoDB.Table, log)
		return store, nil, func() { store.Close() }, nil

	default:
		log.Warn("Using in-memory document store, data is lost on restart")
		store := docstore.NewMemoryStore()
		return store, nil, func() { store.Close() }, nil
	}
}

// initRabbitMQ initializes the RabbitMQ client. An empty queue name gives a publish-only client.
func initRabbitMQ(cfg *config.RabbitMQConfig, queueName string, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(&rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          queueName,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		BindingKeys:        cfg.BindingKeys,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}, logger)
}
