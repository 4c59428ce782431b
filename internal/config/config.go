package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Ledger Import"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host        string `envconfig:"DB_HOST" default:"localhost"`
		Port        int    `envconfig:"DB_PORT" default:"5432"`
		User        string `envconfig:"DB_USER" default:"postgres"`
		Password    string `envconfig:"DB_PASSWORD" default:""`
		Name        string `envconfig:"DB_NAME" default:"ledger"`
		MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
		AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		// JWTSecret enables HS256 bearer authentication on the API when set.
		JWTSecret string `envconfig:"AUTH_JWT_SECRET" default:""`
	}

	Import struct {
		MaxUploadBytes       int64  `envconfig:"IMPORT_MAX_UPLOAD_BYTES" default:"10485760"`
		DescriptionSeparator string `envconfig:"IMPORT_DESCRIPTION_SEPARATOR" default:" "`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
