package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BUCKETGATE_STORAGE_BUCKET", "site")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, ":80", cfg.Gateway.Addr)
	assert.Equal(t, "index.html", cfg.Gateway.IndexDocument)
	assert.Empty(t, cfg.Gateway.NotFoundRedirect)
	assert.False(t, cfg.Gateway.Admin)
	assert.False(t, cfg.Gateway.CORS.Enabled)

	assert.Equal(t, ":8080", cfg.Management.Addr)
	assert.True(t, cfg.Management.Admin)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "site", cfg.Storage.Bucket)
	assert.Equal(t, "bucketgate_objects", cfg.Storage.Database.Table)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
gateway:
  addr: ":9000"
  not_found_redirect: /404.html
  index_document: default.htm
  cors:
    enabled: true
    allowed_origins:
      - https://example.com
    max_age: 600
management:
  addr: "127.0.0.1:9001"
  admin: false
server:
  read_timeout: 5s
  shutdown_timeout: 1m
storage:
  backend: postgres
  bucket: assets
  database:
    dsn: postgres://localhost/test
    table: custom_objects
log:
  level: debug
  format: json
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Gateway.Addr)
	assert.Equal(t, "/404.html", cfg.Gateway.NotFoundRedirect)
	assert.Equal(t, "default.htm", cfg.Gateway.IndexDocument)
	assert.True(t, cfg.Gateway.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com"}, cfg.Gateway.CORS.AllowedOrigins)
	assert.Equal(t, 600, cfg.Gateway.CORS.MaxAge)
	assert.Equal(t, "127.0.0.1:9001", cfg.Management.Addr)
	assert.False(t, cfg.Management.Admin)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Equal(t, "assets", cfg.Storage.Bucket)
	assert.Equal(t, "postgres://localhost/test", cfg.Storage.Database.DSN)
	assert.Equal(t, "custom_objects", cfg.Storage.Database.Table)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	base := writeConfig(t, "base.yaml", `
gateway:
  addr: ":7000"
storage:
  backend: filesystem
  bucket: site
  filesystem:
    path: /srv/data
log:
  level: info
`)
	override := writeConfig(t, "override.yaml", `
gateway:
  addr: ":7100"
log:
  level: warn
`)

	cfg, err := config.Load([]string{base, override}, nil)
	require.NoError(t, err)

	assert.Equal(t, ":7100", cfg.Gateway.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "filesystem", cfg.Storage.Backend)
	assert.Equal(t, "/srv/data", cfg.Storage.Filesystem.Path)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := config.Load([]string{filepath.Join(t.TempDir(), "nope.yaml")}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("BUCKETGATE_GATEWAY_ADDR", ":8181")
	t.Setenv("BUCKETGATE_STORAGE_BACKEND", "sqlite")
	t.Setenv("BUCKETGATE_STORAGE_BUCKET", "docs")
	t.Setenv("BUCKETGATE_STORAGE_DATABASE_DSN", "file:objects.db")
	t.Setenv("BUCKETGATE_SERVER_IDLE_TIMEOUT", "45s")
	t.Setenv("BUCKETGATE_MANAGEMENT_ADMIN", "false")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Gateway.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "docs", cfg.Storage.Bucket)
	assert.Equal(t, "file:objects.db", cfg.Storage.Database.DSN)
	assert.Equal(t, 45*time.Second, cfg.Server.IdleTimeout)
	assert.False(t, cfg.Management.Admin)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("BUCKETGATE_STORAGE_BUCKET", "from-env")
	t.Setenv("BUCKETGATE_GATEWAY_ADDR", ":1111")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("bucket", "", "")
	flags.String("addr", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--bucket", "from-flag", "--log-level", "error"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Storage.Bucket)
	assert.Equal(t, ":1111", cfg.Gateway.Addr, "unset flags must not shadow env")
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing bucket", content: `
storage:
  backend: s3
`},
		{name: "unknown backend", content: `
storage:
  backend: ftp
  bucket: site
`},
		{name: "bucket with slash", content: `
storage:
  bucket: a/b
`},
		{name: "filesystem without path", content: `
storage:
  backend: filesystem
  bucket: site
  filesystem:
    path: ""
`},
		{name: "sqlite without dsn", content: `
storage:
  backend: sqlite
  bucket: site
`},
		{name: "postgres with invalid table", content: `
storage:
  backend: postgres
  bucket: site
  database:
    dsn: postgres://localhost/db
    table: Bad-Table
`},
		{name: "s3 access key without secret", content: `
storage:
  bucket: site
  s3:
    access_key: AKIATEST
`},
		{name: "s3 endpoint not a url", content: `
storage:
  bucket: site
  s3:
    endpoint: "not a url"
`},
		{name: "invalid log level", content: `
storage:
  bucket: site
log:
  level: loud
`},
		{name: "invalid log format", content: `
storage:
  bucket: site
log:
  format: xml
`},
		{name: "empty gateway addr", content: `
gateway:
  addr: ""
storage:
  bucket: site
`},
		{name: "shared addr", content: `
gateway:
  addr: ":9000"
management:
  addr: ":9000"
storage:
  bucket: site
`},
		{name: "invalid index document", content: `
gateway:
  index_document: ../index.html
storage:
  bucket: site
`},
		{name: "negative cors max age", content: `
gateway:
  cors:
    max_age: -1
storage:
  bucket: site
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{path}, nil)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestConfig_Listeners(t *testing.T) {
	cfg := config.Config{
		Gateway: config.ListenerConfig{
			Addr:             ":80",
			NotFoundRedirect: "/404.html",
			IndexDocument:    "index.html",
			CORS:             bucketgate.CORSConfig{Enabled: true},
		},
		Management: config.ListenerConfig{Addr: ":8080", Admin: true},
	}

	listeners := cfg.Listeners()

	require.Len(t, listeners, 2)
	assert.Equal(t, bucketgate.ServerConfig{
		Name:             "gateway",
		Addr:             ":80",
		NotFoundRedirect: "/404.html",
		IndexDocument:    "index.html",
		CORS:             bucketgate.CORSConfig{Enabled: true},
	}, listeners[0])
	assert.Equal(t, "management", listeners[1].Name)
	assert.True(t, listeners[1].Admin)
	assert.False(t, listeners[1].HasRedirect())
}

func TestStorageConfig_DatabaseConfig(t *testing.T) {
	s := config.StorageConfig{
		Backend:  "sqlite",
		Database: config.DatabaseConfig{DSN: ":memory:", Table: "objects"},
	}

	assert.True(t, s.IsDatabase())
	db := s.DatabaseConfig()
	assert.Equal(t, "sqlite", db.Type)
	assert.Equal(t, ":memory:", db.DSN)
	assert.Equal(t, "objects", db.Table)

	assert.False(t, config.StorageConfig{Backend: "s3"}.IsDatabase())
}

func TestConfig_Redacted(t *testing.T) {
	cfg := config.Config{
		Storage: config.StorageConfig{
			S3:       config.S3Config{AccessKey: "AKIATEST", SecretKey: "supersecret"},
			Database: config.DatabaseConfig{DSN: "postgres://app:hunter2@db:5432/objects?sslmode=disable"},
		},
	}

	out := cfg.Redacted()

	assert.Equal(t, "AKIATEST", out.Storage.S3.AccessKey)
	assert.NotContains(t, out.Storage.S3.SecretKey, "supersecret")
	assert.NotContains(t, out.Storage.Database.DSN, "hunter2")
	assert.Contains(t, out.Storage.Database.DSN, "app:")
	assert.Contains(t, out.Storage.Database.DSN, "db:5432/objects")

	assert.Equal(t, "supersecret", cfg.Storage.S3.SecretKey, "original must be untouched")

	plain := config.Config{Storage: config.StorageConfig{Database: config.DatabaseConfig{DSN: "file:objects.db"}}}
	assert.Equal(t, "file:objects.db", plain.Redacted().Storage.Database.DSN)
}

func TestFromContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)

	cfg := &config.Config{}
	got, err := config.FromContext(config.WithContext(context.Background(), cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
