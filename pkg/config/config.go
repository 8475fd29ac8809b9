package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	CDS      CDSConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Log      LogConfig
}

type CDSConfig struct {
	URL            string
	Key            string
	Dataset        string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RedisConfig configures the run lock. An empty Addr disables locking.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockKey  string
	LockTTL  time.Duration
}

// KafkaConfig configures archive update events. No brokers disables them.
type KafkaConfig struct {
	Brokers       []string
	TopicUpdates  string
	NumPartitions int
	Compression   string
}

type LogConfig struct {
	Level  string
	Format string
}

// cdsapirc mirrors the ~/.cdsapirc file read by the official clients
type cdsapirc struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		CDS: CDSConfig{
			URL:            getEnv("CDSAPI_URL", ""),
			Key:            getEnv("CDSAPI_KEY", ""),
			Dataset:        getEnv("CDS_DATASET", "reanalysis-era5-single-levels"),
			PollInterval:   getEnvAsDuration("CDS_POLL_INTERVAL", 10*time.Second),
			RequestTimeout: getEnvAsDuration("CDS_REQUEST_TIMEOUT", time.Minute),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "era5_user"),
			Password: getEnv("DB_PASSWORD", "era5_pass"),
			DBName:   getEnv("DB_NAME", "era5_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			LockKey:  getEnv("REDIS_LOCK_KEY", "era5sync:lock"),
			LockTTL:  getEnvAsDuration("REDIS_LOCK_TTL", 12*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "")),
			TopicUpdates:  getEnv("KAFKA_TOPIC_UPDATES", "era5.archive.updates"),
			NumPartitions: getEnvAsInt("KAFKA_NUM_PARTITIONS", 3),
			Compression:   getEnv("KAFKA_COMPRESSION", "snappy"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if config.CDS.URL == "" || config.CDS.Key == "" {
		rc, err := loadCDSAPIRC(getEnv("CDSAPI_RC", defaultRCPath()))
		if err != nil {
			return nil, err
		}
		if config.CDS.URL == "" {
			config.CDS.URL = rc.URL
		}
		if config.CDS.Key == "" {
			config.CDS.Key = rc.Key
		}
	}
	if config.CDS.URL == "" {
		config.CDS.URL = "https://cds.climate.copernicus.eu/api"
	}

	return config, nil
}

func defaultRCPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cdsapirc")
}

// loadCDSAPIRC reads "url:" and "key:" lines. A missing file is not an error.
func loadCDSAPIRC(path string) (cdsapirc, error) {
	var rc cdsapirc
	if path == "" {
		return rc, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return rc, nil
	}
	if err != nil {
		return rc, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &rc); err != nil {
		return rc, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
