package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/database"
)

// Listener names used in logs, metrics and ServerConfig.Name.
const (
	GatewayListener    = "gateway"
	ManagementListener = "management"
)

// Storage backends.
const (
	BackendS3         = "s3"
	BackendFilesystem = "filesystem"
	BackendSQLite     = "sqlite"
	BackendPostgres   = "postgres"
)

const redacted = "********"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for bucketgate.
type Config struct {
	Gateway    ListenerConfig `mapstructure:"gateway" yaml:"gateway"`
	Management ListenerConfig `mapstructure:"management" yaml:"management"`
	Server     ServerConfig   `mapstructure:"server" yaml:"server"`
	Storage    StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Log        LogConfig      `mapstructure:"log" yaml:"log"`
}

// ListenerConfig holds the settings of one HTTP listener.
type ListenerConfig struct {
	Addr             string                `mapstructure:"addr" yaml:"addr" validate:"required"`
	NotFoundRedirect string                `mapstructure:"not_found_redirect" yaml:"not_found_redirect,omitempty"`
	IndexDocument    string                `mapstructure:"index_document" yaml:"index_document"`
	Admin            bool                  `mapstructure:"admin" yaml:"admin"`
	CORS             bucketgate.CORSConfig `mapstructure:"cors" yaml:"cors"`
}

// ServerConfig holds HTTP server timeouts shared by all listeners.
type ServerConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
}

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	Backend    string           `mapstructure:"backend" yaml:"backend" validate:"required,oneof=s3 filesystem sqlite postgres"`
	Bucket     string           `mapstructure:"bucket" yaml:"bucket" validate:"required"`
	S3         S3Config         `mapstructure:"s3" yaml:"s3"`
	Filesystem FilesystemConfig `mapstructure:"filesystem" yaml:"filesystem"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
}

// S3Config holds S3 client settings. Empty values fall back to the AWS SDK
// defaults (environment, shared config files).
type S3Config struct {
	Region       string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint     string `mapstructure:"endpoint" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	AccessKey    string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey    string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	UsePathStyle bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
	MaxAttempts  int    `mapstructure:"max_attempts" yaml:"max_attempts" validate:"min=0"`
}

// FilesystemConfig holds the root directory of the filesystem backend.
type FilesystemConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DatabaseConfig holds the sqlite and postgres backend settings.
type DatabaseConfig struct {
	DSN   string `mapstructure:"dsn" yaml:"dsn"`
	Table string `mapstructure:"table" yaml:"table"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
}

// ServerConfig converts the listener settings into a bucketgate.ServerConfig.
func (c ListenerConfig) ServerConfig(name string) bucketgate.ServerConfig {
	return bucketgate.ServerConfig{
		Name:             name,
		Addr:             c.Addr,
		NotFoundRedirect: c.NotFoundRedirect,
		IndexDocument:    c.IndexDocument,
		Admin:            c.Admin,
		CORS:             c.CORS,
	}
}

// Listeners returns the gateway and management listener configurations, in
// that order.
func (c *Config) Listeners() []bucketgate.ServerConfig {
	return []bucketgate.ServerConfig{
		c.Gateway.ServerConfig(GatewayListener),
		c.Management.ServerConfig(ManagementListener),
	}
}

// IsDatabase reports whether the selected backend is SQL based.
func (c StorageConfig) IsDatabase() bool {
	return c.Backend == BackendSQLite || c.Backend == BackendPostgres
}

// DatabaseConfig returns the connection settings for SQL backends.
func (c StorageConfig) DatabaseConfig() database.Config {
	return database.Config{
		Type:  c.Backend,
		DSN:   c.Database.DSN,
		Table: c.Database.Table,
	}
}

// Redacted returns a copy safe to print: secrets are masked and DSN
// passwords removed.
func (c Config) Redacted() Config {
	out := c
	if out.Storage.S3.SecretKey != "" {
		out.Storage.S3.SecretKey = redacted
	}
	out.Storage.Database.DSN = redactDSN(out.Storage.Database.DSN)
	return out
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); !ok {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), redacted)
	return u.String()
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"addr":               "gateway.addr",
	"management-addr":    "management.addr",
	"index-document":     "gateway.index_document",
	"not-found-redirect": "gateway.not_found_redirect",
	"backend":            "storage.backend",
	"bucket":             "storage.bucket",
	"storage-path":       "storage.filesystem.path",
	"db-dsn":             "storage.database.dsn",
	"db-table":           "storage.database.table",
	"s3-region":          "storage.s3.region",
	"s3-endpoint":        "storage.s3.endpoint",
	"s3-path-style":      "storage.s3.use_path_style",
	"log-level":          "log.level",
	"log-format":         "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key is
// given a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	for _, l := range []string{GatewayListener, ManagementListener} {
		v.SetDefault(l+".not_found_redirect", "")
		v.SetDefault(l+".index_document", "index.html")
		v.SetDefault(l+".cors.enabled", false)
		v.SetDefault(l+".cors.allowed_origins", []string{"*"})
		v.SetDefault(l+".cors.allowed_methods", []string{"GET", "HEAD"})
		v.SetDefault(l+".cors.allowed_headers", []string{"*"})
		v.SetDefault(l+".cors.exposed_headers", []string{})
		v.SetDefault(l+".cors.allow_credentials", false)
		v.SetDefault(l+".cors.max_age", 300)
	}
	v.SetDefault("gateway.addr", ":80")
	v.SetDefault("gateway.admin", false)
	v.SetDefault("management.addr", ":8080")
	v.SetDefault("management.admin", true)

	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("storage.backend", BackendS3)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("storage.s3.max_attempts", 0)
	v.SetDefault("storage.filesystem.path", "./data")
	v.SetDefault("storage.database.dsn", "")
	v.SetDefault("storage.database.table", "bucketgate_objects")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFiles[0], err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merge config file %s: %w", cf, err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("BUCKETGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules of the storage and
// listener sections.
func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterStructValidation(validateStorage, StorageConfig{})

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	for _, l := range cfg.Listeners() {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	if cfg.Gateway.Addr == cfg.Management.Addr {
		return fmt.Errorf("validate config: %w: gateway and management share addr %s", bucketgate.ErrInvalidInput, cfg.Gateway.Addr)
	}

	return nil
}

func validateStorage(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(StorageConfig)
	if !ok {
		return
	}

	if s.Bucket != "" && !bucketgate.IsValidBucket(s.Bucket) {
		sl.ReportError(s.Bucket, "Bucket", "bucket", "bucket", "")
	}

	switch s.Backend {
	case BackendFilesystem:
		if s.Filesystem.Path == "" {
			sl.ReportError(s.Filesystem.Path, "Filesystem.Path", "path", "required_for_backend", s.Backend)
		}
	case BackendSQLite, BackendPostgres:
		if s.Database.DSN == "" {
			sl.ReportError(s.Database.DSN, "Database.DSN", "dsn", "required_for_backend", s.Backend)
		}
		if !bucketgate.IsValidTableName(s.Database.Table) {
			sl.ReportError(s.Database.Table, "Database.Table", "table", "table_name", "")
		}
	case BackendS3:
		if (s.S3.AccessKey == "") != (s.S3.SecretKey == "") {
			sl.ReportError(s.S3.AccessKey, "S3.AccessKey", "access_key", "credentials_pair", "")
		}
	}
}
