package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageDynamoDB = "dynamodb"
	StoragePostgres = "postgres"

	ImageSourceS3    = "s3"
	ImageSourceMinIO = "minio"
)

type Config struct {
	AWS        AWSConfig        `yaml:"aws"`
	Tables     TablesConfig     `yaml:"tables"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	MinIO      MinIOConfig      `yaml:"minio"`
	Images     ImagesConfig     `yaml:"images"`
	NATS       NATSConfig       `yaml:"nats"`
	Comparator ComparatorConfig `yaml:"comparator"`
	Collection CollectionConfig `yaml:"collection"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
	// Endpoint overrides the service endpoint (localstack and friends).
	Endpoint string `yaml:"endpoint"`
}

type TablesConfig struct {
	Labels     string `yaml:"labels"`
	AccessLogs string `yaml:"access_logs"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ImagesConfig selects how image references reach the recognition service.
// With source "s3" the service reads the object itself; with "minio" the
// bytes are fetched from MinIO and sent inline.
type ImagesConfig struct {
	Source string `yaml:"source"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type ComparatorConfig struct {
	Bucket string `yaml:"bucket"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

type CollectionConfig struct {
	ID string `yaml:"id"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	// InvokeTimeout is the budget given to a direct invocation served over HTTP.
	InvokeTimeout time.Duration `yaml:"invoke_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from an optional YAML file and applies environment
// variable overrides. An empty path skips the file, which is how the Lambda
// binaries run.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDynamoDB, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Images.Source {
	case ImageSourceS3, ImageSourceMinIO:
	default:
		return fmt.Errorf("unknown image source %q", c.Images.Source)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}
	if cfg.Tables.Labels == "" {
		cfg.Tables.Labels = "ImageLabels"
	}
	if cfg.Tables.AccessLogs == "" {
		cfg.Tables.AccessLogs = "IdentityVaultLogs"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDynamoDB
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Images.Source == "" {
		cfg.Images.Source = ImageSourceS3
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.Comparator.Bucket == "" {
		cfg.Comparator.Bucket = "identity-verification-lab-123"
	}
	if cfg.Comparator.Source == "" {
		cfg.Comparator.Source = "Sirius_Black.jpeg"
	}
	if cfg.Comparator.Target == "" {
		cfg.Comparator.Target = "Jim Gordon.jpg"
	}
	if cfg.Collection.ID == "" {
		cfg.Collection.ID = "office-employees"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.InvokeTimeout == 0 {
		cfg.Server.InvokeTimeout = 15 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	// AWS_REGION is set by the Lambda runtime.
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("VAULT_AWS_ENDPOINT"); v != "" {
		cfg.AWS.Endpoint = v
	}
	if v := os.Getenv("VAULT_LABELS_TABLE"); v != "" {
		cfg.Tables.Labels = v
	}
	if v := os.Getenv("VAULT_ACCESS_LOGS_TABLE"); v != "" {
		cfg.Tables.AccessLogs = v
	}
	if v := os.Getenv("VAULT_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("VAULT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("VAULT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("VAULT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("VAULT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("VAULT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("VAULT_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("VAULT_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("VAULT_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("VAULT_IMAGE_SOURCE"); v != "" {
		cfg.Images.Source = v
	}
	if v := os.Getenv("VAULT_NATS_URL"); v != "" {
		cfg.NATS.URL = v
		cfg.NATS.Enabled = true
	}
	if v := os.Getenv("VAULT_COMPARE_BUCKET"); v != "" {
		cfg.Comparator.Bucket = v
	}
	if v := os.Getenv("VAULT_COMPARE_SOURCE"); v != "" {
		cfg.Comparator.Source = v
	}
	if v := os.Getenv("VAULT_COMPARE_TARGET"); v != "" {
		cfg.Comparator.Target = v
	}
	if v := os.Getenv("VAULT_COLLECTION_ID"); v != "" {
		cfg.Collection.ID = v
	}
	if v := os.Getenv("VAULT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VAULT_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("VAULT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
