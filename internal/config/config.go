package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverDynamoDB = "dynamodb"
	StorageDriverMemory   = "memory"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	App      AppConfig      `yaml:"app"`
	Company  CompanyConfig  `yaml:"company"`
	Locale   LocaleConfig   `yaml:"locale"`
	Upload   UploadConfig   `yaml:"upload"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// StorageConfig selects the document store backend
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Postgres DatabaseConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// SQLiteConfig holds the single-file store location
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DynamoDBConfig holds DynamoDB table settings
type DynamoDBConfig struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Table           string `yaml:"table"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange/queue configuration
type RabbitMQConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Host        string           `yaml:"host"`
	Port        int              `yaml:"port"`
	User        string           `yaml:"user"`
	Password    string           `yaml:"password"`
	VHost       string           `yaml:"vhost"`
	Exchange    ExchangeConfig   `yaml:"exchange"`
	Queue       QueueConfig      `yaml:"queue"`
	BindingKeys []string         `yaml:"binding_keys"`
	Connection  ConnectionConfig `yaml:"connection"`
	Publish     PublishConfig    `yaml:"publish"`
	Consumer    ConsumerConfig   `yaml:"consumer"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// QueueConfig holds RabbitMQ queue configuration
type QueueConfig struct {
	Name       string `yaml:"name"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
	Exclusive  bool   `yaml:"exclusive"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// ConsumerConfig holds RabbitMQ consumer settings
type ConsumerConfig struct {
	PrefetchCount int `yaml:"prefetch_count"`
}

// RedisConfig holds the public viewer cache settings
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	// PublicOrigin is the client-facing site origin used in QR payloads and portal links
	PublicOrigin string `yaml:"public_origin"`
}

// CompanyConfig holds the letterhead, tax and banking details printed on documents
type CompanyConfig struct {
	Name               string     `yaml:"name"`
	RegistrationNumber string     `yaml:"registration_number"`
	VATNumber          string     `yaml:"vat_number"`
	Phone              string     `yaml:"phone"`
	Email              string     `yaml:"email"`
	Address            string     `yaml:"address"`
	Website            string     `yaml:"website"`
	CurrencySymbol     string     `yaml:"currency_symbol"`
	VATRate            float64    `yaml:"vat_rate"`
	PaymentTermsDays   int        `yaml:"payment_terms_days"`
	Bank               BankConfig `yaml:"bank"`
}

// BankConfig holds EFT details
type BankConfig struct {
	BankName      string `yaml:"bank_name"`
	AccountName   string `yaml:"account_name"`
	AccountNumber string `yaml:"account_number"`
	BranchCode    string `yaml:"branch_code"`
	AccountType   string `yaml:"account_type"`
}

// LocaleConfig holds phone numbering assumptions
type LocaleConfig struct {
	CountryDialCode string `yaml:"country_dial_code"`
	Language        string `yaml:"language"`
}

// UploadConfig points at the file upload relay
type UploadConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

// WorkerConfig holds worker service configuration
type WorkerConfig struct {
	ID              string        `yaml:"id"`
	Concurrency     int           `yaml:"concurrency"`
	QueueSize       int           `yaml:"queue_size"`
	EventTimeout    time.Duration `yaml:"event_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// ${VAR} references are expanded so secrets can live in .env
	data = []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverMemory
	}
	if c.Storage.DynamoDB.Table == "" {
		c.Storage.DynamoDB.Table = "documents"
	}
	if c.Storage.Postgres.SSLMode == "" {
		c.Storage.Postgres.SSLMode = "disable"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 10 << 20
	}
	if c.RabbitMQ.Exchange.Type == "" {
		c.RabbitMQ.Exchange.Type = "topic"
	}
	if len(c.RabbitMQ.BindingKeys) == 0 {
		c.RabbitMQ.BindingKeys = []string{"jobcard.#"}
	}
	if c.RabbitMQ.Consumer.PrefetchCount == 0 {
		c.RabbitMQ.Consumer.PrefetchCount = 10
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.Company.CurrencySymbol == "" {
		c.Company.CurrencySymbol = "R"
	}
	if c.Company.VATRate == 0 {
		c.Company.VATRate = 0.15
	}
	if c.Company.PaymentTermsDays == 0 {
		c.Company.PaymentTermsDays = 7
	}
	if c.Locale.CountryDialCode == "" {
		c.Locale.CountryDialCode = "+27"
	}
	if c.Locale.Language == "" {
		c.Locale.Language = "en-ZA"
	}
	if c.Upload.Timeout == 0 {
		c.Upload.Timeout = 30 * time.Second
	}
	if c.Worker.QueueSize == 0 {
		c.Worker.QueueSize = c.Worker.Concurrency * 2
	}
}

// Validate checks the settings shared by every process
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		db := c.Storage.Postgres
		if db.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if db.Port < MinPort || db.Port > MaxPort {
			return fmt.Errorf("invalid database port: %d (must be between %d and %d)", db.Port, MinPort, MaxPort)
		}
		if db.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageDriverSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case StorageDriverDynamoDB:
		if c.Storage.DynamoDB.Region == "" {
			return fmt.Errorf("dynamodb region is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required")
		}
		if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
			return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
		}
		if c.RabbitMQ.Exchange.Name == "" {
			return fmt.Errorf("rabbitmq exchange name is required")
		}
	}

	if c.Company.VATRate < 0 || c.Company.VATRate >= 1 {
		return fmt.Errorf("invalid company vat_rate: %v (must be a fraction between 0 and 1)", c.Company.VATRate)
	}

	if !strings.HasPrefix(c.Locale.CountryDialCode, "+") {
		return fmt.Errorf("locale country_dial_code must start with '+'")
	}

	return nil
}

// ValidateAPIConfig checks the settings needed by the API service
func (c *Config) ValidateAPIConfig() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.App.PublicOrigin != "" {
		u, err := url.Parse(c.App.PublicOrigin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid app public_origin: %q", c.App.PublicOrigin)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required when redis is enabled")
	}

	return nil
}

// ValidateWorkerConfig checks the settings needed by the worker service
func (c *Config) ValidateWorkerConfig() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if !c.RabbitMQ.Enabled {
		return fmt.Errorf("rabbitmq must be enabled for the worker")
	}

	if c.RabbitMQ.Queue.Name == "" {
		return fmt.Errorf("rabbitmq queue name is required")
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker concurrency must be greater than 0")
	}

	if c.Worker.EventTimeout <= 0 {
		return fmt.Errorf("worker event_timeout must be greater than 0")
	}

	if c.Worker.ShutdownTimeout <= 0 {
		return fmt.Errorf("worker shutdown_timeout must be greater than 0")
	}

	return nil
}
