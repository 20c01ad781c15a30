// Package config provides configuration loading and validation for bucketgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (BUCKETGATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with BUCKETGATE_ prefix:
//   - gateway.addr → BUCKETGATE_GATEWAY_ADDR
//   - storage.backend → BUCKETGATE_STORAGE_BACKEND
//   - storage.s3.secret_key → BUCKETGATE_STORAGE_S3_SECRET_KEY
//
// # Configuration Structure
//
// The Config struct contains:
//   - Gateway, Management: per-listener addr, not-found redirect, index document, admin routes and CORS
//   - Server: read/write/idle/shutdown timeouts shared by both listeners
//   - Storage: backend (s3, filesystem, sqlite, postgres), bucket and backend settings
//   - Log: level and format (text or json)
//
// # Validation
//
// Besides the struct tags, Validate enforces that the selected backend has
// the settings it needs, that the bucket is a single path segment, that both
// listeners pass bucketgate.ServerConfig.Validate and that they do not share
// an address.
package config
