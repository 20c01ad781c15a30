package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/sagarc03/bucketgate"
)

// Header is an ordered header list with unique, canonicalised keys.
// Setting an existing key replaces its value in place.
type Header struct {
	keys   []string
	values map[string]string
}

// Set stores value under the canonical form of key.
func (h *Header) Set(key, value string) {
	key = http.CanonicalHeaderKey(key)
	if h.values == nil {
		h.values = make(map[string]string)
	}
	if _, exists := h.values[key]; !exists {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value stored under key, or "".
func (h Header) Get(key string) string {
	return h.values[http.CanonicalHeaderKey(key)]
}

// Has reports whether key is present.
func (h Header) Has(key string) bool {
	_, ok := h.values[http.CanonicalHeaderKey(key)]
	return ok
}

// Keys returns the header names in insertion order.
func (h Header) Keys() []string {
	return append([]string(nil), h.keys...)
}

// Len returns the number of headers.
func (h Header) Len() int {
	return len(h.keys)
}

// Response is a fully built HTTP response.
type Response struct {
	Status int
	Header Header
	Body   []byte
}

// Write sends the response. Content-Length is always set; the body is
// skipped for HEAD requests.
func (r Response) Write(w http.ResponseWriter, req *http.Request) error {
	dst := w.Header()
	for _, k := range r.Header.keys {
		dst.Set(k, r.Header.values[k])
	}
	dst.Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.Status)

	if req != nil && req.Method == http.MethodHead {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

var statusBodies = map[int]string{
	http.StatusOK:                  "OK",
	http.StatusBadRequest:          "Bad Request",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusInternalServerError: "Internal Server Error",
}

// BuildStatusResponse returns a plain text response for code.
// Codes outside the known set keep their value but get the body "Unknown".
func BuildStatusResponse(code int) Response {
	body, ok := statusBodies[code]
	if !ok {
		body = "Unknown"
	}

	var h Header
	h.Set("Content-Type", DefaultContentType)

	return Response{
		Status: code,
		Header: h,
		Body:   []byte(body),
	}
}

// BuildObjectResponse maps the outcome of fetching key to a response.
//
// Found objects are served with a Content-Type guessed from key. Missing
// objects are redirected to redirectPath when it is set and answered with 404
// otherwise. Transient errors are logged and always answered with 500, as is a
// redirectPath that is not a valid header value.
func BuildObjectResponse(logger *slog.Logger, outcome bucketgate.FetchOutcome, key, redirectPath string) Response {
	if logger == nil {
		logger = slog.Default()
	}

	switch outcome.Kind {
	case bucketgate.OutcomeFound:
		var h Header
		h.Set("Content-Type", ContentTypeForKey(key))
		body := outcome.Body
		if body == nil {
			body = []byte{}
		}
		return Response{
			Status: http.StatusOK,
			Header: h,
			Body:   body,
		}

	case bucketgate.OutcomeNotFound:
		if redirectPath == "" {
			return BuildStatusResponse(http.StatusNotFound)
		}
		return buildRedirect(logger, redirectPath)

	case bucketgate.OutcomeTransientError:
		logger.Warn("failed to get object", "key", key, "err", outcome.Err)
		return BuildStatusResponse(http.StatusInternalServerError)

	default:
		logger.Error("unknown fetch outcome", "key", key, "kind", int(outcome.Kind))
		return BuildStatusResponse(http.StatusInternalServerError)
	}
}

func buildRedirect(logger *slog.Logger, location string) Response {
	if !httpguts.ValidHeaderFieldValue(location) {
		logger.Error("invalid redirect location", "location", strconv.Quote(location))
		return BuildStatusResponse(http.StatusInternalServerError)
	}

	var h Header
	h.Set("Content-Type", DefaultContentType)
	h.Set("Location", location)

	return Response{
		Status: http.StatusFound,
		Header: h,
		Body:   []byte("Found"),
	}
}
