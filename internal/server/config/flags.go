package config

import (
	"flag"

	"github.com/dmitrijs2005/puffkeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-n", "-z", "-r", "-k", "-t", "-u", "-p", "-b", "-g", "-e"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-s string     API key HMAC secret
//	-n int        initial puff count
//	-z string     time zone (IANA name)
//	-r string     daily reset cron schedule
//	-k string     backup cron schedule
//	-t duration   shutdown timeout (e.g., "10s")
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name (empty disables snapshots)
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Args are first filtered with flagx.FilterArgs, so flags owned by other
// layers (such as -c) do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "api key secret")
	fs.IntVar(&config.InitialPuffCount, "n", config.InitialPuffCount, "initial puff count")
	fs.StringVar(&config.Timezone, "z", config.Timezone, "time zone for the daily reset")
	fs.StringVar(&config.ResetSchedule, "r", config.ResetSchedule, "daily reset cron schedule")
	fs.StringVar(&config.BackupSchedule, "k", config.BackupSchedule, "backup cron schedule")
	fs.DurationVar(&config.ShutdownTimeout, "t", config.ShutdownTimeout, "graceful shutdown timeout")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 snapshot bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
