package bucketgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// OutcomeKind tags the variant held by a FetchOutcome.
type OutcomeKind int

const (
	OutcomeFound OutcomeKind = iota + 1
	OutcomeNotFound
	OutcomeTransientError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransientError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchOutcome is the result of a single object lookup.
//
// Body and ContentType are only meaningful for OutcomeFound, Err only for
// OutcomeTransientError. ContentType is whatever the backend reported and may be empty.
type FetchOutcome struct {
	Kind        OutcomeKind
	Body        []byte
	ContentType string
	Err         error
}

// Found returns an outcome for an object that was read successfully.
func Found(body []byte, contentType string) FetchOutcome {
	return FetchOutcome{Kind: OutcomeFound, Body: body, ContentType: contentType}
}

// NotFound returns an outcome for a key that does not exist in the bucket.
func NotFound() FetchOutcome {
	return FetchOutcome{Kind: OutcomeNotFound}
}

// TransientError returns an outcome for any failure other than a missing key.
func TransientError(err error) FetchOutcome {
	if err == nil {
		err = ErrInternal
	}
	return FetchOutcome{Kind: OutcomeTransientError, Err: err}
}

// OutcomeFromError builds an outcome from a conventional (body, error) pair.
// Errors wrapping ErrNotFound become NotFound, every other error a TransientError.
func OutcomeFromError(body []byte, contentType string, err error) FetchOutcome {
	switch {
	case err == nil:
		return Found(body, contentType)
	case errors.Is(err, ErrNotFound):
		return NotFound()
	default:
		return TransientError(err)
	}
}

// ObjectStore fetches single objects by bucket and key.
// Implementations are shared by every listener and must be safe for concurrent use.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) FetchOutcome
}

// ObjectWriter is implemented by backends that objects can be loaded into.
// It returns the number of bytes stored.
type ObjectWriter interface {
	PutObject(ctx context.Context, bucket, key, contentType string, content io.Reader) (int64, error)
}

// CORSConfig holds the cross-origin settings of one listener.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods,omitempty"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers,omitempty"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers,omitempty"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age" validate:"min=0"`
}

// ServerConfig is the immutable configuration of a single listener.
type ServerConfig struct {
	// Name identifies the listener in logs and metrics.
	Name string
	// Addr is the TCP bind address, e.g. ":8080".
	Addr string
	// NotFoundRedirect, when set, turns missing keys into a 302 to this location.
	NotFoundRedirect string
	// IndexDocument is appended to keys that address a directory ("" or ending in "/").
	IndexDocument string
	// Admin enables the /healthz and /metrics routes.
	Admin bool
	CORS  CORSConfig
}

// HasRedirect reports whether missing keys should be redirected.
func (c ServerConfig) HasRedirect() bool {
	return c.NotFoundRedirect != ""
}

// Validate checks the fields that cannot be defaulted.
func (c ServerConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("validate server config: %w: name cannot be empty", ErrInvalidInput)
	}
	if c.Addr == "" {
		return fmt.Errorf("validate server config %s: %w: addr cannot be empty", c.Name, ErrInvalidInput)
	}
	if c.IndexDocument != "" && !IsValidKey(c.IndexDocument) {
		return fmt.Errorf("validate server config %s: %w: invalid index document: %s", c.Name, ErrInvalidInput, c.IndexDocument)
	}
	return nil
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}
