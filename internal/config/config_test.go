package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			assert.Equal(t, 8080, cfg.Server.Port)
			assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
			assert.Equal(t, "localhost", cfg.Storage.Postgres.Host)
			assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
			assert.Equal(t, "jobcard_db", cfg.Storage.Postgres.Database)
			assert.Equal(t, "jobcard_events", cfg.RabbitMQ.Exchange.Name)
			assert.Equal(t, "jobcard_notifications", cfg.RabbitMQ.Queue.Name)
			assert.Equal(t, []string{"jobcard.#"}, cfg.RabbitMQ.BindingKeys)
			assert.Equal(t, 2*time.Minute, cfg.Redis.TTL)
			assert.Equal(t, "jobcard-api-service", cfg.App.Name)
			assert.Equal(t, "https://pest.example.co.za", cfg.App.PublicOrigin)
			assert.Equal(t, "FNB", cfg.Company.Bank.BankName)
			assert.InDelta(t, 0.15, cfg.Company.VATRate, 1e-9)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("testdata/minimal.yaml")
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "documents", cfg.Storage.DynamoDB.Table)
	assert.Equal(t, "topic", cfg.RabbitMQ.Exchange.Type)
	assert.Equal(t, 10, cfg.RabbitMQ.Consumer.PrefetchCount)
	assert.Equal(t, "+27", cfg.Locale.CountryDialCode)
	assert.Equal(t, "R", cfg.Company.CurrencySymbol)
	assert.InDelta(t, 0.15, cfg.Company.VATRate, 1e-9)
	assert.Equal(t, 7, cfg.Company.PaymentTermsDays)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)

	require.NoError(t, cfg.ValidateAPIConfig())
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("JOBCARD_DB_PASSWORD", "s3cret")

	path := t.TempDir() + "/config.yaml"
	writeFile(t, path, "storage:\n  driver: postgres\n  postgres:\n    password: ${JOBCARD_DB_PASSWORD}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Storage.Postgres.Password)
}

func validConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			Driver: StorageDriverPostgres,
			Postgres: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "jobcard_db",
			},
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  true,
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "jobcard_events"},
			Queue:    QueueConfig{Name: "jobcard_notifications"},
		},
		Worker: WorkerConfig{
			Concurrency:     2,
			EventTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
	}
	cfg.applyDefaults()
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		validate  func(c *Config) error
		errString string
	}{
		{
			name:     "valid api config",
			mutate:   func(c *Config) {},
			validate: (*Config).ValidateAPIConfig,
		},
		{
			name:     "valid worker config",
			mutate:   func(c *Config) {},
			validate: (*Config).ValidateWorkerConfig,
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			validate:  (*Config).ValidateAPIConfig,
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			validate:  (*Config).ValidateAPIConfig,
			errString: "invalid server port",
		},
		{
			name:      "empty database host",
			mutate:    func(c *Config) { c.Storage.Postgres.Host = "" },
			validate:  (*Config).Validate,
			errString: "database host is required",
		},
		{
			name:      "sqlite without path",
			mutate:    func(c *Config) { c.Storage.Driver = StorageDriverSQLite },
			validate:  (*Config).Validate,
			errString: "sqlite path is required",
		},
		{
			name:      "dynamodb without region",
			mutate:    func(c *Config) { c.Storage.Driver = StorageDriverDynamoDB },
			validate:  (*Config).Validate,
			errString: "dynamodb region is required",
		},
		{
			name:      "unknown storage driver",
			mutate:    func(c *Config) { c.Storage.Driver = "mongo" },
			validate:  (*Config).Validate,
			errString: "unsupported storage driver",
		},
		{
			name:      "rabbitmq exchange missing",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			validate:  (*Config).Validate,
			errString: "rabbitmq exchange name is required",
		},
		{
			name: "rabbitmq disabled skips broker checks",
			mutate: func(c *Config) {
				c.RabbitMQ.Enabled = false
				c.RabbitMQ.Host = ""
			},
			validate: (*Config).ValidateAPIConfig,
		},
		{
			name:      "vat rate expressed as percent",
			mutate:    func(c *Config) { c.Company.VATRate = 15 },
			validate:  (*Config).Validate,
			errString: "invalid company vat_rate",
		},
		{
			name:      "dial code without plus",
			mutate:    func(c *Config) { c.Locale.CountryDialCode = "27" },
			validate:  (*Config).Validate,
			errString: "country_dial_code",
		},
		{
			name:      "public origin without scheme",
			mutate:    func(c *Config) { c.App.PublicOrigin = "pest.example.co.za" },
			validate:  (*Config).ValidateAPIConfig,
			errString: "invalid app public_origin",
		},
		{
			name: "redis enabled without addr",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
			},
			validate:  (*Config).ValidateAPIConfig,
			errString: "redis addr is required",
		},
		{
			name:      "worker requires rabbitmq",
			mutate:    func(c *Config) { c.RabbitMQ.Enabled = false },
			validate:  (*Config).ValidateWorkerConfig,
			errString: "rabbitmq must be enabled",
		},
		{
			name:      "worker requires queue",
			mutate:    func(c *Config) { c.RabbitMQ.Queue.Name = "" },
			validate:  (*Config).ValidateWorkerConfig,
			errString: "rabbitmq queue name is required",
		},
		{
			name:      "worker concurrency",
			mutate:    func(c *Config) { c.Worker.Concurrency = 0 },
			validate:  (*Config).ValidateWorkerConfig,
			errString: "worker concurrency must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := tt.validate(cfg)
			if tt.errString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	t.Run("load and validate valid config", func(t *testing.T) {
		cfg, err := Load("testdata/valid_config.yaml")
		require.NoError(t, err)

		require.NoError(t, cfg.ValidateAPIConfig())
		require.NoError(t, cfg.ValidateWorkerConfig())
	})

	t.Run("load config with invalid port", func(t *testing.T) {
		cfg, err := Load("testdata/invalid_port.yaml")
		require.NoError(t, err)

		err = cfg.ValidateAPIConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server port")
	})

	t.Run("load config with missing database", func(t *testing.T) {
		cfg, err := Load("testdata/missing_database.yaml")
		require.NoError(t, err)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database name is required")
	})
}

func TestPortConstants(t *testing.T) {
	assert.Equal(t, 1, MinPort)
	assert.Equal(t, 65535, MaxPort)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
