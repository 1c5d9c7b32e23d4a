package config

import (
	"errors"
	"time"
)

var (
	ErrMissingEndpoint = errors.New("server endpoint is not configured (set PUFFKEEPER_URL or -a)")
	ErrMissingAPIKey   = errors.New("api key is not configured (set PUFFKEEPER_API_KEY or -k)")
)

// Config holds runtime settings for the puffkeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - APIKey: public API key sent with every call.
//   - RequestTimeout: deadline applied to each unary call.
//   - RefillPuffCount: puff count used by "refill" without an argument.
type Config struct {
	ServerEndpointAddr string
	APIKey             string
	RequestTimeout     time.Duration
	RefillPuffCount    int
}

// LoadDefaults populates c with defaults. There is no default API key.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.APIKey = ""
	c.RequestTimeout = 10 * time.Second
	c.RefillPuffCount = 120
}

// Validate checks that the client can be built from c.
func (c *Config) Validate() error {
	if c.ServerEndpointAddr == "" {
		return ErrMissingEndpoint
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// LoadConfig constructs a Config from defaults, JSON, the .env file, the
// environment and flags, in that order, and validates the result. args are
// the program arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, DefaultEnvFile); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
