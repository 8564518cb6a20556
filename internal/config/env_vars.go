package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	baseURLVar      = "BASE_URL"
	issuerURLVar    = "OIDC_ISSUER_URL"
	clientIDVar     = "OIDC_CLIENT_ID"
	clientSecretVar = "OIDC_CLIENT_SECRET"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Album Gate")
}

// GetBaseURL returns the externally visible base URL of this application,
// used to build the OAuth redirect URI (e.g. "https://albums.example.com").
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetIssuerURL returns the identity provider's issuer URL. Required.
func (EnvVars) GetIssuerURL() string {
	return GetEnv(issuerURLVar, "")
}

// GetClientID returns the OAuth client ID registered with the identity
// provider. Required.
func (EnvVars) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

// GetClientSecret returns the OAuth client secret. Required.
func (EnvVars) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
