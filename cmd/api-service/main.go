package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/api/handler"
	"github.com/cuongbtq/jobcard-service/internal/api/router"
	"github.com/cuongbtq/jobcard-service/internal/cache"
	"github.com/cuongbtq/jobcard-service/internal/config"
	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/documents"
	"github.com/cuongbtq/jobcard-service/internal/events"
	"github.com/cuongbtq/jobcard-service/internal/inventory"
	"github.com/cuongbtq/jobcard-service/internal/jobcard"
	"github.com/cuongbtq/jobcard-service/internal/upload"
	"github.com/cuongbtq/jobcard-service/shared/database"
	"github.com/cuongbtq/jobcard-service/shared/logger"
	"github.com/cuongbtq/jobcard-service/shared/rabbitmq"
	"github.com/cuongbtq/jobcard-service/shared/redisclient"
	"github.com/gin-gonic/gin"
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

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, healthCheck, closeStore, err := initStore(ctx, &cfg.Storage, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStore()

	appLogger.Info("Document store ready")

	var publisher events.Publisher = events.NopPublisher{}
	var rabbitClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, "", appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()
		publisher = events.NewRabbitPublisher(rabbitClient, appLogger.Component("events"))
		appLogger.Info("RabbitMQ connection established")
	}

	var views jobcard.ViewCache
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(ctx, &redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		views = cache.NewJobViewCache(redisClient, cfg.Redis.TTL, appLogger.Component("cache"))
		appLogger.Info("Redis connection established")
	}

	var uploader jobcard.Uploader
	if cfg.Upload.Endpoint != "" {
		uploader = upload.NewClient(upload.Config{
			Endpoint: cfg.Upload.Endpoint,
			Token:    cfg.Upload.Token,
			Timeout:  cfg.Upload.Timeout,
		}, appLogger.Component("upload"))
	}

	renderer, err := documents.NewRenderer(cfg.Locale.Language, time.Now)
	if err != nil {
		return fmt.Errorf("failed to initialize document renderer: %w", err)
	}

	ledger := inventory.NewLedger(store, appLogger.Component("inventory"))
	if err := ledger.Warm(ctx); err != nil {
		return err
	}

	jobs := jobcard.NewService(jobcard.Dependencies{
		Store:     store,
		Inventory: ledger,
		Uploader:  uploader,
		Publisher: publisher,
		Views:     views,
		Renderer:  renderer,
		Settings:  initSettings(cfg),
		Logger:    appLogger.Component("jobcard"),
	})
	if err := jobs.Warm(ctx); err != nil {
		return fmt.Errorf("failed to load job cards: %w", err)
	}

	r := initRouter(cfg.App.Environment, &handler.Dependencies{
		Logger:         appLogger.Logger,
		Jobs:           jobs,
		Inventory:      ledger,
		Store:          store,
		HealthCheck:    healthCheck,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...",
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		appLogger.Error("Server failed to start",
			slog.Any("error", err),
		)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
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

// initSettings maps the company profile onto the job card defaults
func initSettings(cfg *config.Config) jobcard.Settings {
	c := cfg.Company
	return jobcard.Settings{
		Company: documents.Company{
			Name:               c.Name,
			RegistrationNumber: c.RegistrationNumber,
			VATNumber:          c.VATNumber,
			Phone:              c.Phone,
			Email:              c.Email,
			Address:            c.Address,
			Website:            c.Website,
			CurrencySymbol:     c.CurrencySymbol,
			PaymentTermsDays:   c.PaymentTermsDays,
			Bank: documents.BankDetails{
				BankName:      c.Bank.BankName,
				AccountName:   c.Bank.AccountName,
				AccountNumber: c.Bank.AccountNumber,
				BranchCode:    c.Bank.BranchCode,
				AccountType:   c.Bank.AccountType,
			},
		},
		VATRate:      c.VATRate,
		DialCode:     cfg.Locale.CountryDialCode,
		PublicOrigin: cfg.App.PublicOrigin,
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(environment string, deps *handler.Dependencies) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps)
}
