package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups the service configuration (read through Viper from env and an optional file).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Scanner ScannerConfig
	Live    LiveConfig
	Redis   RedisConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env         string // development, staging, production
	Name        string
	LogLevel    string
	StoreDriver string // postgres | memory
}

// DBConfig PostgreSQL settings.
// When DatabaseURL is set it is used verbatim as the connection string.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Migrate     bool
}

// ConnectionString returns DATABASE_URL when defined, otherwise the DSN built from the parts.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN builds a postgres URL, escaping special characters in the password.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig session token settings.
type JWTConfig struct {
	Secret       string
	Expiration   int // minutes
	Issuer       string
	CookieName   string
	CookieSecure bool
}

// HTTPConfig HTTP server settings.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ScannerConfig receipt scanner. Driver "http" posts to the scanning service
// at BaseURL; "gemini" and "anthropic" send the image to that LLM API instead.
type ScannerConfig struct {
	Driver          string
	BaseURL         string
	Timeout         time.Duration
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// LiveConfig live change transport used by the summary stream.
type LiveConfig struct {
	Transport string // memory | postgres | redis
	Channel   string
	Heartbeat time.Duration
}

// RedisConfig connection settings for LIVE_TRANSPORT=redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables (and optionally a file).
// Env vars win. Expected names: APP_ENV, DB_HOST, JWT_SECRET, SCANNER_URL, LIVE_TRANSPORT, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:         getString(v, "APP_ENV", "development"),
			Name:        getString(v, "APP_NAME", "eeris"),
			LogLevel:    getString(v, "LOG_LEVEL", "info"),
			StoreDriver: getString(v, "STORE_DRIVER", "postgres"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "eeris"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			Migrate:     getBool(v, "DB_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:       getString(v, "JWT_SECRET", ""),
			Expiration:   getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:       getString(v, "JWT_ISSUER", "eeris"),
			CookieName:   getString(v, "SESSION_COOKIE", "eeris_session"),
			CookieSecure: getBool(v, "SESSION_COOKIE_SECURE", false),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "CORS_ORIGINS", "http://localhost:3000"),
		},
		Scanner: ScannerConfig{
			Driver:          getString(v, "SCANNER_DRIVER", "http"),
			BaseURL:         strings.TrimRight(getString(v, "SCANNER_URL", "http://localhost:8000"), "/"),
			Timeout:         time.Duration(getInt(v, "SCANNER_TIMEOUT_SECONDS", 30)) * time.Second,
			GeminiAPIKey:    getString(v, "GEMINI_API_KEY", ""),
			GeminiModel:     getString(v, "GEMINI_MODEL", "gemini-1.5-flash"),
			AnthropicAPIKey: getString(v, "ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getString(v, "ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		},
		Live: LiveConfig{
			Transport: getString(v, "LIVE_TRANSPORT", "memory"),
			Channel:   getString(v, "LIVE_CHANNEL", "expense_changes"),
			Heartbeat: time.Duration(getInt(v, "LIVE_HEARTBEAT_SECONDS", 15)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	switch c.App.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.App.StoreDriver)
	}
	switch c.Live.Transport {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("config: unknown LIVE_TRANSPORT %q", c.Live.Transport)
	}
	switch c.Scanner.Driver {
	case "http", "gemini", "anthropic":
	default:
		return fmt.Errorf("config: unknown SCANNER_DRIVER %q", c.Scanner.Driver)
	}
	if c.Live.Transport == "postgres" && c.App.StoreDriver != "postgres" {
		return fmt.Errorf("config: LIVE_TRANSPORT=postgres requires STORE_DRIVER=postgres")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
