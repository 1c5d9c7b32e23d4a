// Package config loads runtime configuration for the puffkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. A .env file in the working directory, read with godotenv.
//  4. Environment variables PUFFKEEPER_URL and PUFFKEEPER_API_KEY.
//  5. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the puffkeeper gRPC endpoint
//	-k string     public API key
//	-t duration   per-request timeout (e.g. "10s")
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "api_key": "eyJhbGciOi...",
//	  "request_timeout": "10s"
//	}
//
// Both the endpoint and the API key are required; Validate reports which
// one is missing.
package config
