package config

import (
	"github.com/albumgate/albumgate/internal/errors"
)

type Config interface {
	EnvConfig
	OAuthConfig
	CookieConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Cookies
}

func New() Config {
	return mainConfig{}
}

// Validate checks the startup-required identity-provider settings. A missing
// value is fatal at process start, not a per-request condition.
func Validate(c Config) error {
	if c.GetIssuerURL() == "" {
		return errors.Wrapf(errors.ErrConfiguration, "issuer URL is not set (%s)", issuerURLVar)
	}
	if c.GetClientID() == "" {
		return errors.Wrapf(errors.ErrConfiguration, "client ID is not set (%s)", clientIDVar)
	}
	if c.GetClientSecret() == "" {
		return errors.Wrapf(errors.ErrConfiguration, "client secret is not set (%s)", clientSecretVar)
	}
	return nil
}
