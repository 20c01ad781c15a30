// Package http turns object lookups into HTTP responses for bucketgate.
//
// The package has two layers. The response builders are pure functions:
//
//   - BuildStatusResponse: plain text response for a status code
//   - BuildObjectResponse: response for a FetchOutcome (200, 302, 404 or 500)
//
// The Handler wires them to a chi router for one listener. GET and HEAD on any
// path resolve to an object key in the configured bucket; every other method is
// answered with 405.
//
// # Responses
//
// Found objects are served with a Content-Type guessed from the key's extension
// (text/plain when unknown). Missing objects are redirected with 302 when the
// listener has a not-found redirect, otherwise answered with 404. Backend
// failures are logged and answered with 500; the error text never reaches the
// client.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Server: bucketgate.ServerConfig{Name: "gateway", Addr: ":80", IndexDocument: "index.html"},
//	    Bucket: "website",
//	    Logger: logger,
//	}
//	handler := http.NewHandler(&handlerCfg, store)
//	router := handler.Router()
//
// # Middleware
//
// Router installs RequestID, AccessLog and Recoverer, plus go-chi/cors when the
// listener enables CORS. Admin listeners also serve /healthz and /metrics.
package http
