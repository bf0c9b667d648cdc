package config

import (
	"fmt"
	"net/url"
	"slices"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Remote.Enabled() {
		if err := c.Remote.validate(); err != nil {
			return fmt.Errorf("remote: %w", err)
		}
		if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
			return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31 (got %d)", c.Auth.BcryptCost)
		}
		if c.Auth.TokenTTL <= 0 {
			return fmt.Errorf("auth.token_ttl must be > 0 (got %v)", c.Auth.TokenTTL)
		}
	}

	if c.Session.ProfileTimeout <= 0 {
		return fmt.Errorf("session.profile_timeout must be > 0 (got %v)", c.Session.ProfileTimeout)
	}
	if c.Session.DemoEmail == "" || c.Session.DemoPassword == "" {
		return fmt.Errorf("session.demo_email and session.demo_password must be set")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", c.Server.Port)
	}

	if !slices.Contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v (got %q)", validLogLevels, c.Log.Level)
	}
	if !slices.Contains(validLogFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v (got %q)", validLogFormats, c.Log.Format)
	}

	return nil
}

func (r RemoteConfig) validate() error {
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("url scheme must be postgres or postgresql (got %q)", u.Scheme)
	}
	if len(r.Key) < 32 {
		return fmt.Errorf("key must be at least 32 characters (got %d)", len(r.Key))
	}
	return nil
}
