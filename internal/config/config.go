// Package config reads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ProjectID       string
	CredentialsFile string
	Port            string
	AuthSecret      string
	TokenTTL        time.Duration
	SecureCookies   bool
	AllowedOrigins  []string
	LogLevel        string
	LogFile         string
	ShutdownTimeout time.Duration
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("AUTH_TOKEN_TTL", "24h")
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.AutomaticEnv()
	return v
}

// Load reads .env files (when present) into the process environment and then
// builds the configuration from it.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Info("no .env file found")
	}
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ProjectID:       v.GetString("GOOGLE_CLOUD_PROJECT"),
		CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS_FILE"),
		Port:            v.GetString("PORT"),
		AuthSecret:      v.GetString("AUTH_SECRET"),
		TokenTTL:        v.GetDuration("AUTH_TOKEN_TTL"),
		SecureCookies:   v.GetBool("SECURE_COOKIES"),
		AllowedOrigins:  splitList(v.GetString("ALLOWED_ORIGINS")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFile:         v.GetString("LOG_FILE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.ProjectID == "" {
		errs = append(errs, errors.New("GOOGLE_CLOUD_PROJECT environment variable is required"))
	}
	if c.AuthSecret == "" {
		errs = append(errs, errors.New("AUTH_SECRET environment variable is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// splitList parses a comma separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
