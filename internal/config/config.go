package config

import (
	"strings"
	"time"

	"momo/internal/database"

	"github.com/spf13/viper"
)

// Config holds the runtime settings of the storefront.
type Config struct {
	AppPort             string
	SecretKey           string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	Database            database.Config
	RabbitMQURL         string
	// RequireOrderPersistence makes checkout fail (and keep the cart) when the
	// order row could not be written.
	RequireOrderPersistence bool
	StaticDir               string
	ImageMapPath            string
	CORSAllowOrigins        string
}

// DefaultSecretKey is used when SECRET_KEY is not set. Never use it in production.
const DefaultSecretKey = "dev-fallback-key-change-in-production"

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("SECRET_KEY", DefaultSecretKey)
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("DB_DRIVER", database.DriverMySQL)
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_HEALTH_CHECK_INTERVAL", "30s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CHECKOUT_REQUIRE_PERSISTENCE", false)
	v.SetDefault("STATIC_DIR", "./static")
	v.SetDefault("IMAGE_MAP_PATH", "./static/cloudinary_map.json")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
}

// Load reads the configuration from v, which is expected to have defaults
// registered and environment lookup enabled.
func Load(v *viper.Viper) Config {
	return Config{
		AppPort:             v.GetString("APP_PORT"),
		SecretKey:           v.GetString("SECRET_KEY"),
		SessionTTL:          v.GetDuration("SESSION_TTL"),
		SessionCookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		Database: database.Config{
			Driver:              strings.ToLower(v.GetString("DB_DRIVER")),
			Host:                v.GetString("DB_HOST"),
			User:                v.GetString("DB_USER"),
			Password:            v.GetString("DB_PASSWORD"),
			Name:                v.GetString("DB_NAME"),
			Port:                v.GetInt("DB_PORT"),
			DSN:                 v.GetString("DATABASE_DSN"),
			HealthCheckInterval: v.GetDuration("DB_HEALTH_CHECK_INTERVAL"),
		},
		RabbitMQURL:             v.GetString("RABBITMQ_URL"),
		RequireOrderPersistence: v.GetBool("CHECKOUT_REQUIRE_PERSISTENCE"),
		StaticDir:               v.GetString("STATIC_DIR"),
		ImageMapPath:            v.GetString("IMAGE_MAP_PATH"),
		CORSAllowOrigins:        v.GetString("CORS_ALLOW_ORIGINS"),
	}
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return Load(v)
}
