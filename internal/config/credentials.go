package config

import (
	"github.com/joho/godotenv"
)

// Environment variable names for account credentials. A .env file in the
// working directory is loaded first, so either source works.
const (
	EnvUsername = "LAWFETCH_USERNAME"
	EnvPassword = "LAWFETCH_PASSWORD"
)

// Credentials is the site account used for authenticated retrieval.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both fields are present.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// LoadCredentials reads credentials from the environment, consulting a
// local .env file if one exists. Missing values are left empty; callers
// decide whether to prompt interactively.
func LoadCredentials() Credentials {
	_ = godotenv.Load()
	return Credentials{
		Username: getenv(EnvUsername, ""),
		Password: getenv(EnvPassword, ""),
	}
}
