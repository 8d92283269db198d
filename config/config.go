// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

type Config struct {
	Telegram struct {
		Token string
		Debug bool
	}
	Admin struct {
		// ChatID receives forwarded support messages.
		ChatID int64
	}
	Analysis struct {
		Provider string
		Timeout  time.Duration
		Language string
	}
	Gemini struct {
		APIKey string
		Model  string
	}
	GPT struct {
		APIKey string
		Model  string
	}
	Store struct {
		Driver     string
		SQLitePath string
	}
	DB      DBConfig
	Session struct {
		TTL time.Duration
	}
	Server struct {
		Port string
	}
	Log struct {
		Development bool
	}
	ShutdownTimeout time.Duration
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.luna-bot")

	setDefaults(v)

	// Enable environment variables to override config values (ANALYSIS_PROVIDER -> Analysis.Provider)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		return fromEnv(), nil
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("Analysis.Provider", ProviderGemini)
	v.SetDefault("Analysis.Timeout", 60*time.Second)
	v.SetDefault("Analysis.Language", "ru")
	v.SetDefault("Gemini.Model", "gemini-2.5-flash")
	v.SetDefault("GPT.Model", "gpt-4o")
	v.SetDefault("Store.Driver", DriverSQLite)
	v.SetDefault("Store.SQLitePath", "luna.db")
	v.SetDefault("Session.TTL", 30*time.Minute)
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)
}

// fromEnv builds the config from environment variables alone, used when no
// config file is present.
func fromEnv() *Config {
	cfg := &Config{}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	cfg.Telegram.Debug = getEnvBool("TELEGRAM_DEBUG", false)
	cfg.Admin.ChatID = getEnvInt64("ADMIN_CHAT_ID", 0)
	cfg.Analysis.Provider = getEnvOr("ANALYSIS_PROVIDER", ProviderGemini)
	cfg.Analysis.Timeout = getEnvDuration("ANALYSIS_TIMEOUT", 60*time.Second)
	cfg.Analysis.Language = getEnvOr("ANALYSIS_LANGUAGE", "ru")
	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Gemini.Model = getEnvOr("GEMINI_MODEL", "gemini-2.5-flash")
	cfg.GPT.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GPT.Model = getEnvOr("GPT_MODEL", "gpt-4o")
	cfg.Store.Driver = getEnvOr("STORE_DRIVER", DriverSQLite)
	cfg.Store.SQLitePath = getEnvOr("SQLITE_PATH", "luna.db")
	cfg.DB.Host = getEnvOr("DB_HOST", "localhost")
	cfg.DB.Port = getEnvOr("DB_PORT", "5432")
	cfg.DB.User = getEnvOr("DB_USER", "postgres")
	cfg.DB.Password = getEnvOr("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnvOr("DB_NAME", "luna_bot")
	cfg.DB.SSLMode = getEnvOr("DB_SSL_MODE", "disable")
	cfg.DB.MaxOpenConns = int(getEnvInt64("DB_MAX_OPEN_CONNS", 20))
	cfg.DB.MaxIdleConns = int(getEnvInt64("DB_MAX_IDLE_CONNS", 10))
	cfg.DB.ConnLifetime = getEnvDuration("DB_CONN_LIFETIME", 5*time.Minute)
	cfg.Session.TTL = getEnvDuration("SESSION_TTL", 30*time.Minute)
	cfg.Server.Port = getEnvOr("SERVER_PORT", "8080")
	cfg.Log.Development = getEnvBool("LOG_DEVELOPMENT", false)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	return cfg
}

// Validate reports the first missing credential. A config that fails
// validation must not start serving.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is not configured")
	}
	switch c.Analysis.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("gemini API key is not configured")
		}
	case ProviderOpenAI:
		if c.GPT.APIKey == "" {
			return errors.New("openai API key is not configured")
		}
	default:
		return fmt.Errorf("unknown analysis provider %q", c.Analysis.Provider)
	}
	if c.Admin.ChatID == 0 {
		return errors.New("admin chat id is not configured")
	}
	return c.ValidateStore()
}

// ValidateStore checks only the storage settings, for commands that do not talk to Telegram.
func (c *Config) ValidateStore() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverMemory:
		return nil
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite path is not configured")
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
}

// Helper function to get environment variable with default value
func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
