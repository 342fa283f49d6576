// Package config loads process configuration from the environment, an optional
// config.yaml in the working directory, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Service names accepted by Load.
const (
	Gateway  = "gateway"
	Auth     = "auth"
	Products = "products"
	Shipping = "shipping"
)

var defaultPorts = map[string]string{
	Gateway:  ":8080",
	Products: ":3001",
	Shipping: ":3002",
	Auth:     ":3003",
}

// Config is the union of settings used by the four processes. Each process
// reads only the fields it needs.
type Config struct {
	Service  string
	Env      string
	Port     string
	LogLevel string

	DBDriver          string
	DatabaseDSN       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBAutoMigrate     bool

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	SessionCookie string

	ProductsAPI     string
	ShippingAPI     string
	AuthAPI         string
	UpstreamTimeout time.Duration
}

// Development reports whether error details may be echoed to clients.
func (c Config) Development() bool { return c.Env == "development" }

// Load reads the configuration for service.
func Load(service string) (Config, error) {
	port, ok := defaultPorts[service]
	if !ok {
		return Config{}, fmt.Errorf("unknown service %q", service)
	}

	v := viper.New()
	setDefaults(v, port)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Service:  service,
		Env:      v.GetString("APP_ENV"),
		Port:     v.GetString("APP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDriver:          v.GetString("DB_DRIVER"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBAutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		RabbitMQURL: v.GetString("RABBITMQ_URL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		SessionCookie: v.GetString("SESSION_COOKIE"),

		ProductsAPI:     v.GetString("PRODUCTS_API"),
		ShippingAPI:     v.GetString("SHIPPING_API"),
		AuthAPI:         v.GetString("AUTH_API"),
		UpstreamTimeout: v.GetDuration("UPSTREAM_TIMEOUT"),
	}
	if cfg.DBMaxOpenConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.DBMaxOpenConns)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must not be empty")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, port string) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_PORT", port)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=microservice_db port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("JWT_SECRET", "your_jwt_secret")
	v.SetDefault("JWT_TTL", time.Hour)

	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SESSION_COOKIE", "toko_session")

	v.SetDefault("PRODUCTS_API", "http://localhost:3001")
	v.SetDefault("SHIPPING_API", "http://localhost:3002")
	v.SetDefault("AUTH_API", "http://localhost:3003")
	v.SetDefault("UPSTREAM_TIMEOUT", 10*time.Second)
}
