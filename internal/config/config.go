// Package config reads client settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	baseURLVar     = "AUTH_BASE_URL"
	timeoutVar     = "AUTH_TIMEOUT_SECONDS"
	credsFileVar   = "AUTH_CREDENTIALS_FILE"
	googleIDVar    = "GOOGLE_CLIENT_ID"
	callbackURLVar = "OAUTH_CALLBACK_URL"
)

type Config interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetCredentialsFile() string
	GetGoogleClientID() string
	GetOAuthCallbackURL() string
}

type EnvVars struct{}

var _ Config = EnvVars{}

func New() Config {
	return EnvVars{}
}

// GetBaseURL returns the Auth Service base path, e.g.
// "https://api.example.com/api/v1/auth".
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080/api/v1/auth")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(timeoutVar, "15"))
	if err != nil || seconds <= 0 {
		seconds = 15
	}
	return time.Duration(seconds) * time.Second
}

// GetCredentialsFile returns where the token pair is persisted. Defaults to a
// dot-directory in the user's home.
func (EnvVars) GetCredentialsFile() string {
	if path := os.Getenv(credsFileVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".auth-credentials.json"
	}
	return filepath.Join(home, ".go-auth-client", "credentials.json")
}

func (EnvVars) GetGoogleClientID() string {
	return GetEnv(googleIDVar, "")
}

func (EnvVars) GetOAuthCallbackURL() string {
	return GetEnv(callbackURLVar, "http://localhost:3000/auth/callback")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
