package config

import (
	"flag"

	"github.com/dmitrijs2005/puffkeeper/internal/flagx"
)

func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "api key")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.IntVar(&cfg.RefillPuffCount, "n", cfg.RefillPuffCount, "puff count of a full inhaler")

	// Filter args to include only those handled here.
	return fs.Parse(flagx.FilterArgs(args, []string{"-a", "-k", "-t", "-n"}))
}
