package http_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	gatehttp "github.com/sagarc03/bucketgate/http"
)

func TestContentTypeForKey(t *testing.T) {
	tt := []struct {
		Key  string
		Want string
	}{
		{Key: "index.html", Want: "text/html"},
		{Key: "index.HTM", Want: "text/html"},
		{Key: "a/b/c/style.css", Want: "text/css"},
		{Key: "bundle.mjs", Want: "text/javascript"},
		{Key: "bundle.js.map", Want: "application/json"},
		{Key: "site.webmanifest", Want: "application/manifest+json"},
		{Key: "fonts/inter.woff2", Want: "font/woff2"},
		{Key: "docs/manual.pdf", Want: "application/pdf"},
		{Key: "module.wasm", Want: "application/wasm"},
		{Key: "robots.txt", Want: "text/plain"},
		{Key: "README", Want: "text/plain"},
		{Key: "v1.0/LICENSE", Want: "text/plain"},
		{Key: "trailingdot.", Want: "text/plain"},
		{Key: "", Want: "text/plain"},
		{Key: "file.definitely-not-registered", Want: "text/plain"},
	}

	for _, tc := range tt {
		t.Run(tc.Key, func(t *testing.T) {
			assert.Equal(t, tc.Want, gatehttp.ContentTypeForKey(tc.Key))
		})
	}
}
