package bucketgate_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/bucketgate"
)

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "found", bucketgate.OutcomeFound.String())
	assert.Equal(t, "not_found", bucketgate.OutcomeNotFound.String())
	assert.Equal(t, "error", bucketgate.OutcomeTransientError.String())
	assert.Equal(t, "unknown", bucketgate.OutcomeKind(0).String())
}

func TestOutcomeFromError(t *testing.T) {
	backendErr := errors.New("connection reset")

	tests := []struct {
		name     string
		body     []byte
		err      error
		wantKind bucketgate.OutcomeKind
	}{
		{
			name:     "nil error is found",
			body:     []byte("hello"),
			wantKind: bucketgate.OutcomeFound,
		},
		{
			name:     "nil error with empty body is found",
			body:     []byte{},
			wantKind: bucketgate.OutcomeFound,
		},
		{
			name:     "not found sentinel",
			err:      bucketgate.ErrNotFound,
			wantKind: bucketgate.OutcomeNotFound,
		},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("get object: %w", bucketgate.ErrNotFound),
			wantKind: bucketgate.OutcomeNotFound,
		},
		{
			name:     "other error is transient",
			err:      backendErr,
			wantKind: bucketgate.OutcomeTransientError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := bucketgate.OutcomeFromError(tt.body, "text/plain", tt.err)
			assert.Equal(t, tt.wantKind, outcome.Kind)

			switch tt.wantKind {
			case bucketgate.OutcomeFound:
				assert.Equal(t, tt.body, outcome.Body)
				assert.Equal(t, "text/plain", outcome.ContentType)
				assert.NoError(t, outcome.Err)
			case bucketgate.OutcomeTransientError:
				assert.ErrorIs(t, outcome.Err, tt.err)
				assert.Nil(t, outcome.Body)
			}
		})
	}
}

func TestTransientError_NilError(t *testing.T) {
	outcome := bucketgate.TransientError(nil)

	assert.Equal(t, bucketgate.OutcomeTransientError, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, bucketgate.ErrInternal)
}

func TestServerConfig_HasRedirect(t *testing.T) {
	assert.False(t, bucketgate.ServerConfig{}.HasRedirect())
	assert.True(t, bucketgate.ServerConfig{NotFoundRedirect: "/404.html"}.HasRedirect())
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     bucketgate.ServerConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  bucketgate.ServerConfig{Name: "gateway", Addr: ":80", IndexDocument: "index.html"},
		},
		{
			name: "valid without index",
			cfg:  bucketgate.ServerConfig{Name: "management", Addr: ":8080"},
		},
		{
			name:    "missing name",
			cfg:     bucketgate.ServerConfig{Addr: ":80"},
			wantErr: true,
		},
		{
			name:    "missing addr",
			cfg:     bucketgate.ServerConfig{Name: "gateway"},
			wantErr: true,
		},
		{
			name:    "invalid index document",
			cfg:     bucketgate.ServerConfig{Name: "gateway", Addr: ":80", IndexDocument: "../index.html"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, bucketgate.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidTableName(t *testing.T) {
	tests := []struct {
		name  string
		table string
		valid bool
	}{
		{name: "simple", table: "bucketgate_objects", valid: true},
		{name: "leading underscore", table: "_objects", valid: true},
		{name: "with digits", table: "objects_v2", valid: true},
		{name: "empty", table: "", valid: false},
		{name: "uppercase", table: "Objects", valid: false},
		{name: "leading digit", table: "1objects", valid: false},
		{name: "injection", table: "objects; DROP TABLE x", valid: false},
		{name: "too long", table: "a234567890123456789012345678901234567890123456789012345678901234", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, bucketgate.IsValidTableName(tt.table))
		})
	}
}
