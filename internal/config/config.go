package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	secretSalt = "confrerie_secret_v1"
)

type AppConfig struct {
	API          *APIConfig          `mapstructure:"api"`
	Gin          *GinConfig          `mapstructure:"gin"`
	Storage      *StorageConfig      `mapstructure:"storage"`
	Postgres     *PostgresConfig     `mapstructure:"postgres"`
	Auth         *AuthConfig         `mapstructure:"auth"`
	Guard        *GuardConfig        `mapstructure:"guard"`
	Session      *SessionConfig      `mapstructure:"session"`
	Notification *NotificationConfig `mapstructure:"notification"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	SecretKey          string   `mapstructure:"secret_key"`
	CookieSecure       bool     `mapstructure:"cookie_secure"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type StorageConfig struct {
	Driver         string `mapstructure:"driver"`
	DataFile       string `mapstructure:"data_file"`
	DocumentKey    string `mapstructure:"document_key"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	UploadDir      string `mapstructure:"upload_dir"`
	UploadURL      string `mapstructure:"upload_url"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type AuthConfig struct {
	RememberTTL       time.Duration `mapstructure:"remember_ttl"`
	MinPasswordLength int           `mapstructure:"min_password_length"`
	PasswordPattern   string        `mapstructure:"password_pattern"`
}

type GuardConfig struct {
	Window          time.Duration `mapstructure:"window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type SessionConfig struct {
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type NotificationConfig struct {
	PollLimit int `mapstructure:"poll_limit"`
	PageLimit int `mapstructure:"page_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:8080"})
	v.SetDefault("api.secret_key", "")
	v.SetDefault("api.cookie_secure", false)

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.data_file", "data/app_data.json")
	v.SetDefault("storage.document_key", "confrerie")
	v.SetDefault("storage.sqlite_path", "data/confrerie.db")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.upload_url", "uploads")
	v.SetDefault("storage.max_upload_bytes", 64<<20)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "confrerie")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("auth.remember_ttl", 10*365*24*time.Hour)
	v.SetDefault("auth.min_password_length", 4)
	v.SetDefault("auth.password_pattern", "")

	v.SetDefault("guard.window", 4*time.Second)
	v.SetDefault("guard.cleanup_interval", time.Minute)

	v.SetDefault("session.idle_ttl", 12*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)

	v.SetDefault("notification.poll_limit", 15)
	v.SetDefault("notification.page_limit", 30)
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing file leaves defaults and environment variables in charge.
	fromFile := true
	if err := v.ReadInConfig(); err != nil {
		fromFile = false
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.API.SecretKey == "" {
		conf.API.SecretKey = DeriveSecret(path)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if fromFile {
		v.OnConfigChange(func(e fsnotify.Event) {
			zap.L().Info("config file changed, restart to apply", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		})
		v.WatchConfig()
	}

	return conf, nil
}

// DeriveSecret builds a stable per-host secret for signing remember cookies.
func DeriveSecret(configPath string) string {
	host, _ := os.Hostname()
	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}

	sum := sha256.Sum256([]byte(host + "|" + abs + "|" + secretSalt))

	return hex.EncodeToString(sum[:])
}
