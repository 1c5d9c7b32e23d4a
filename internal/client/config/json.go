package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/puffkeeper/internal/flagx"
	"github.com/dmitrijs2005/puffkeeper/internal/timex"
)

type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	APIKey             string          `json:"api_key"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	RefillPuffCount    int             `json:"refill_puff_count"`
}

func parseJson(cfg *Config, args []string) error {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags(args)
	if jsonConfigFile == "" {
		return nil
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.APIKey != "" {
		cfg.APIKey = jc.APIKey
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefillPuffCount != 0 {
		cfg.RefillPuffCount = jc.RefillPuffCount
	}
	return nil
}
