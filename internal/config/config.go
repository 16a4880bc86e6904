package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
// It is built once in main and injected into constructors; nothing reads the
// environment after startup.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8800"`
	MySQLDSN   string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/auth?charset=utf8mb4&parseTime=True&loc=Local"`
	RedisAddr  string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB    int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass  string `env:"REDIS_PASSWORD"`

	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load reads an optional .env file and builds Config from the environment.
func Load() (*Config, error) {
	// A missing .env is fine; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
