package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const EnvDevelopment = "development"

type AppConfig struct {
	API       *APIConfig
	Gin       *GinConfig
	Postgres  *PostgresConfig
	Auth      *AuthConfig
	Storage   *StorageConfig
	Scheduler *SchedulerConfig
}

type APIConfig struct {
	Environment        string
	Port               string
	BaseURL            string
	AllowedCORSDomains []string
	JWTSigningKey      string
}

type GinConfig struct {
	Mode string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

func (c *PostgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DB, c.Port, sslMode,
	)
}

type AuthConfig struct {
	TokenTTL           time.Duration
	AllowedEmailDomain string
	FrontendURL        string
	// CallbackSecret is shared with the bridge that finishes the provider exchange.
	CallbackSecret string

	mu                sync.RWMutex
	inactivityTimeout time.Duration
}

// InactivityTimeout may change while the server runs when the config file is edited.
func (c *AuthConfig) InactivityTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.inactivityTimeout
}

func (c *AuthConfig) SetInactivityTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inactivityTimeout = d
}

type StorageConfig struct {
	UploadDir string
}

type SchedulerConfig struct {
	SweepInterval            time.Duration
	ConfirmationBusinessDays int
	Location                 string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", EnvDevelopment)
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:5173"})
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.inactivity_timeout", "10m")
	v.SetDefault("auth.allowed_email_domain", "@udea.edu.co")
	v.SetDefault("auth.frontend_url", "http://localhost:5173")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("scheduler.sweep_interval", "1m")
	v.SetDefault("scheduler.confirmation_business_days", 3)
	v.SetDefault("scheduler.location", "America/Bogota")
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("INGETUTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := fromViper(v)
	if conf.API.JWTSigningKey == "" {
		return nil, fmt.Errorf("api.jwt_signing_key is required")
	}
	if conf.Auth.CallbackSecret == "" && conf.API.Environment != EnvDevelopment {
		return nil, fmt.Errorf("auth.callback_secret is required outside %s", EnvDevelopment)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		reload(v, conf)
	})
	v.WatchConfig()

	return conf, nil
}

func fromViper(v *viper.Viper) *AppConfig {
	auth := &AuthConfig{
		TokenTTL:           v.GetDuration("auth.token_ttl"),
		AllowedEmailDomain: strings.ToLower(v.GetString("auth.allowed_email_domain")),
		FrontendURL:        v.GetString("auth.frontend_url"),
		CallbackSecret:     v.GetString("auth.callback_secret"),
	}
	auth.SetInactivityTimeout(v.GetDuration("auth.inactivity_timeout"))

	return &AppConfig{
		API: &APIConfig{
			Environment:        v.GetString("api.environment"),
			Port:               v.GetString("api.port"),
			BaseURL:            v.GetString("api.base_url"),
			AllowedCORSDomains: v.GetStringSlice("api.allowed_cors_domains"),
			JWTSigningKey:      v.GetString("api.jwt_signing_key"),
		},
		Gin: &GinConfig{
			Mode: v.GetString("gin.mode"),
		},
		Postgres: &PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			DB:       v.GetString("postgres.db"),
			SSLMode:  v.GetString("postgres.sslmode"),
		},
		Auth: auth,
		Storage: &StorageConfig{
			UploadDir: v.GetString("storage.upload_dir"),
		},
		Scheduler: &SchedulerConfig{
			SweepInterval:            v.GetDuration("scheduler.sweep_interval"),
			ConfirmationBusinessDays: v.GetInt("scheduler.confirmation_business_days"),
			Location:                 v.GetString("scheduler.location"),
		},
	}
}

// reload only touches values that are safe to swap on a running server.
func reload(v *viper.Viper, conf *AppConfig) {
	if d := v.GetDuration("auth.inactivity_timeout"); d > 0 {
		conf.Auth.SetInactivityTimeout(d)
	}
}
