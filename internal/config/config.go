package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Dropbox  DropboxConfig
	Ingest   IngestConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// DropboxConfig points at the S3-compatible bucket the retail application
// drops its spreadsheet exports into.
type DropboxConfig struct {
	Enabled             bool
	Endpoint            string
	AccessKey           string
	SecretKey           string
	Bucket              string
	Prefix              string
	UseSSL              bool
	PollIntervalSeconds int
	DownloadDir         string
}

type IngestConfig struct {
	BranchName      string
	DefaultPassword string
	LogLevel        string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "hasmart")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 60)
		viper.SetDefault("DROPBOX_ENABLED", false)
		viper.SetDefault("DROPBOX_ENDPOINT", "")
		viper.SetDefault("DROPBOX_ACCESS_KEY", "")
		viper.SetDefault("DROPBOX_SECRET_KEY", "")
		viper.SetDefault("DROPBOX_BUCKET", "")
		viper.SetDefault("DROPBOX_PREFIX", "exports/")
		viper.SetDefault("DROPBOX_USE_SSL", true)
		viper.SetDefault("DROPBOX_POLL_INTERVAL_SECONDS", 60)
		viper.SetDefault("DROPBOX_DOWNLOAD_DIR", "./data/incoming")
		viper.SetDefault("INGEST_BRANCH_NAME", "")
		viper.SetDefault("INGEST_DEFAULT_PASSWORD", "12345678")
		viper.SetDefault("LOG_LEVEL", "info")

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Dropbox: DropboxConfig{
				Enabled:             viper.GetBool("DROPBOX_ENABLED"),
				Endpoint:            viper.GetString("DROPBOX_ENDPOINT"),
				AccessKey:           viper.GetString("DROPBOX_ACCESS_KEY"),
				SecretKey:           viper.GetString("DROPBOX_SECRET_KEY"),
				Bucket:              viper.GetString("DROPBOX_BUCKET"),
				Prefix:              viper.GetString("DROPBOX_PREFIX"),
				UseSSL:              viper.GetBool("DROPBOX_USE_SSL"),
				PollIntervalSeconds: viper.GetInt("DROPBOX_POLL_INTERVAL_SECONDS"),
				DownloadDir:         viper.GetString("DROPBOX_DOWNLOAD_DIR"),
			},
			Ingest: IngestConfig{
				BranchName:      viper.GetString("INGEST_BRANCH_NAME"),
				DefaultPassword: viper.GetString("INGEST_DEFAULT_PASSWORD"),
				LogLevel:        viper.GetString("LOG_LEVEL"),
			},
		}
	})

	return instance
}
