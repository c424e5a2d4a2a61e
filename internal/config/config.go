package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendSQL  = "sql"
	BackendGorm = "gorm"
)

// DatabaseConfig holds connection settings for the document table.
// Driver selects SQLite (Path) or PostgreSQL (Host, Port, ...); Backend selects database/sql or GORM.
type DatabaseConfig struct {
	Backend            string `yaml:"backend"`
	Driver             string `yaml:"driver"`
	Path               string `yaml:"path"`
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Name               string `yaml:"name"`
	SSLMode            string `yaml:"sslmode"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	Debug              bool   `yaml:"debug"`
}

// MinIOConfig holds object storage settings for s3:// locations.
// Object storage is optional; an empty Endpoint disables it.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// StorageConfig holds the local roots for file:// and content:// locations.
type StorageConfig struct {
	FileRoot    string `yaml:"file_root"`
	ContentRoot string `yaml:"content_root"`
}

// ScannerConfig holds settings for the inbox scanner.
type ScannerConfig struct {
	InboxDir   string `yaml:"inbox_dir"`
	TimeoutSec int    `yaml:"timeout_sec"`
	SettleMS   int    `yaml:"settle_ms"`
}

// PickerConfig holds the base location new documents are saved under when no destination is given.
type PickerConfig struct {
	Destination string `yaml:"destination"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from an optional YAML file and environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string         `yaml:"app_host"`
	Port     string         `yaml:"port"`
	Debug    bool           `yaml:"debug"`
	TimeZone string         `yaml:"timezone"`
	Database DatabaseConfig `yaml:"database"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Storage  StorageConfig  `yaml:"storage"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Picker   PickerConfig   `yaml:"picker"`
}

// Location returns the configured time zone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ScanTimeout is how long a scan waits for a document before failing.
func (s ScannerConfig) ScanTimeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// Settle is how long a new file must stay unchanged before it is taken as a finished scan.
func (s ScannerConfig) Settle() time.Duration {
	return time.Duration(s.SettleMS) * time.Millisecond
}

// Defaults returns the configuration used when neither a file nor the environment sets a value.
func Defaults() *AppConfig {
	return &AppConfig{
		AppHost:  "localhost:8080",
		Port:     "8080",
		TimeZone: "UTC",
		Database: DatabaseConfig{
			Backend:            BackendSQL,
			Driver:             DriverSQLite,
			Path:               "data/documents.db",
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
		},
		Storage: StorageConfig{
			ContentRoot: "data/content",
		},
		Scanner: ScannerConfig{
			InboxDir:   "data/inbox",
			TimeoutSec: 300,
			SettleMS:   500,
		},
		Picker: PickerConfig{
			Destination: "file:///var/lib/docscan/documents",
		},
	}
}

// Load reads configuration from environment variables.
// When CONFIG_FILE is set, that YAML file is read first and environment variables override it.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.AppHost = getEnv("APP_HOST", cfg.AppHost)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)
	cfg.TimeZone = getEnv("TZ", cfg.TimeZone)

	db := &cfg.Database
	db.Backend = getEnv("DB_BACKEND", db.Backend)
	db.Driver = getEnv("DB_DRIVER", db.Driver)
	db.Path = getEnv("DB_PATH", db.Path)
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = getEnv("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.Name = getEnv("DB_NAME", db.Name)
	db.SSLMode = getEnv("DB_SSLMODE", db.SSLMode)
	db.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", db.MaxIdleConns)
	db.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", db.ConnMaxLifetimeSec)
	db.Debug = getEnvBool("DB_DEBUG", db.Debug)

	m := &cfg.MinIO
	m.Endpoint = getEnv("MINIO_ENDPOINT", m.Endpoint)
	m.AccessKey = getEnv("MINIO_ACCESS_KEY", m.AccessKey)
	m.SecretKey = getEnv("MINIO_SECRET_KEY", m.SecretKey)
	m.Bucket = getEnv("MINIO_BUCKET", m.Bucket)
	m.UseSSL = getEnvBool("MINIO_USE_SSL", m.UseSSL)

	cfg.Storage.FileRoot = getEnv("FILE_ROOT", cfg.Storage.FileRoot)
	cfg.Storage.ContentRoot = getEnv("CONTENT_ROOT", cfg.Storage.ContentRoot)

	cfg.Scanner.InboxDir = getEnv("SCANNER_INBOX_DIR", cfg.Scanner.InboxDir)
	cfg.Scanner.TimeoutSec = getEnvInt("SCANNER_TIMEOUT_SEC", cfg.Scanner.TimeoutSec)
	cfg.Scanner.SettleMS = getEnvInt("SCANNER_SETTLE_MS", cfg.Scanner.SettleMS)

	cfg.Picker.Destination = getEnv("PICKER_DESTINATION", cfg.Picker.Destination)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
