package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	DefaultEnvFile = ".env"

	EnvURL    = "PUFFKEEPER_URL"
	EnvAPIKey = "PUFFKEEPER_API_KEY"
)

// parseEnv applies PUFFKEEPER_URL and PUFFKEEPER_API_KEY. Values from the
// process environment win over values from envFile. A missing envFile is
// not an error.
func parseEnv(cfg *Config, envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileVars[key]
	}

	if v := lookup(EnvURL); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := lookup(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	return nil
}
