package bucketgate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidKey validates that a string can be used as an object key.
// It checks that the key:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." segments (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? #
//   - is valid UTF-8
//   - does not contain "." segments (/., /./, or ending with /.)
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Spaces are allowed since keys arrive URL-decoded.
func IsValidKey(k string) bool {
	if k == "" || k == "/" || k == "." {
		return false
	}

	if k[0] == '/' {
		return false
	}

	if strings.HasSuffix(k, "/") {
		return false
	}

	if k == ".." || strings.HasPrefix(k, "../") || strings.Contains(k, "/../") || strings.HasSuffix(k, "/..") {
		return false
	}

	if strings.Contains(k, "//") {
		return false
	}

	if strings.ContainsAny(k, `\?#`) {
		return false
	}

	if !utf8.ValidString(k) {
		return false
	}

	if strings.HasPrefix(k, "./") || strings.Contains(k, "/./") || strings.HasSuffix(k, "/.") {
		return false
	}

	for _, r := range k {
		if r < 0x20 || r == 0x7f || (unicode.IsSpace(r) && r != ' ') {
			return false
		}
	}

	return true
}

// KeyFromPath maps a decoded URL path to an object key.
//
// The leading slash is stripped. Paths addressing a directory (the root or
// anything ending in "/") get indexDocument appended; with no index document
// such paths resolve to ErrNotFound. Keys failing IsValidKey yield ErrInvalidInput.
func KeyFromPath(urlPath, indexDocument string) (string, error) {
	key := strings.TrimPrefix(urlPath, "/")

	if key == "" || strings.HasSuffix(key, "/") {
		if indexDocument == "" {
			return "", fmt.Errorf("key from path %q: %w", urlPath, ErrNotFound)
		}
		key += indexDocument
	}

	if !IsValidKey(key) {
		return "", fmt.Errorf("key from path %q: %w", urlPath, ErrInvalidInput)
	}

	return key, nil
}

// IsValidBucket reports whether name can be used as a bucket: a valid key
// made of a single path segment.
func IsValidBucket(name string) bool {
	return IsValidKey(name) && !strings.Contains(name, "/")
}
