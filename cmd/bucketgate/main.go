package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "bucketgate",
	Short:   "HTTP gateway serving objects from a single bucket",
	Long: `bucketgate serves the objects of one bucket over HTTP.

It runs a public gateway listener and a management listener side by side.
A failure of one listener does not stop the other. The management listener
additionally exposes /healthz and /metrics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log, os.Stderr)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice("config", nil, "config file path, repeat to merge (default: ./config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env: BUCKETGATE_LOG_LEVEL)")
	flags.String("log-format", "", "log format: text, json (env: BUCKETGATE_LOG_FORMAT)")
	flags.String("backend", "", "storage backend: s3, filesystem, sqlite, postgres (default: s3, env: BUCKETGATE_STORAGE_BACKEND)")
	flags.String("bucket", "", "bucket to serve (env: BUCKETGATE_STORAGE_BUCKET)")
	flags.String("storage-path", "", "filesystem backend root directory (default: ./data, env: BUCKETGATE_STORAGE_FILESYSTEM_PATH)")
	flags.String("db-dsn", "", "database connection string (env: BUCKETGATE_STORAGE_DATABASE_DSN)")
	flags.String("db-table", "", "database objects table (default: bucketgate_objects, env: BUCKETGATE_STORAGE_DATABASE_TABLE)")
	flags.String("s3-region", "", "S3 region (env: BUCKETGATE_STORAGE_S3_REGION)")
	flags.String("s3-endpoint", "", "S3 compatible endpoint URL (env: BUCKETGATE_STORAGE_S3_ENDPOINT)")
	flags.Bool("s3-path-style", false, "use path-style S3 addressing (env: BUCKETGATE_STORAGE_S3_USE_PATH_STYLE)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
