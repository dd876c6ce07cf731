package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":5000"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret       string `env:"JWT_SECRET,required"`
	TokenExpiration int    `env:"TOKEN_EXPIRATION" envDefault:"0"`
	TokenIssuer     string `env:"TOKEN_ISSUER" envDefault:"lpuqa"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`
	OAuthStateSecret   string `env:"OAUTH_STATE_SECRET"`

	NewUserURL string `env:"APP_NEW_USER_URL" envDefault:"http://127.0.0.1:5501/frontend/detail.html"`
	HomeURL    string `env:"APP_HOME_URL" envDefault:"http://127.0.0.1:5501/frontend/home.html"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPEmail    string `env:"SMTP_EMAIL"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
}

func (c *config) googleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURI != ""
}

func (c *config) smtpEnabled() bool {
	return c.SMTPEmail != "" && c.SMTPPassword != ""
}

func loadConfig() (*config, error) {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.googleEnabled() && cfg.OAuthStateSecret == "" {
		return nil, fmt.Errorf("OAUTH_STATE_SECRET is required when Google login is configured")
	}

	return cfg, nil
}
