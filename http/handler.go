package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/bucketgate"
)

// HandlerConfig configures the handler of one listener.
type HandlerConfig struct {
	Server bucketgate.ServerConfig
	// Bucket is the bucket every key is looked up in.
	Bucket string
	// Metrics is served on /metrics when Server.Admin is set.
	Metrics  http.Handler
	Observer Observer
	Logger   *slog.Logger
}

// Handler answers object requests for a single listener.
type Handler struct {
	config   HandlerConfig
	store    bucketgate.ObjectStore
	logger   *slog.Logger
	observer Observer
}

// NewHandler creates a new Handler with the given configuration and store.
func NewHandler(config *HandlerConfig, store bucketgate.ObjectStore) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := config.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Handler{
		config:   *config,
		store:    store,
		logger:   logger.With("listener", config.Server.Name),
		observer: observer,
	}
}

// Router returns an http.Handler with the object routes and, on admin
// listeners, the /healthz and /metrics routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog(h.logger, h.config.Server.Name, h.observer))
	r.Use(Recoverer(h.logger))

	if c := h.config.Server.CORS; c.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   c.AllowedOrigins,
			AllowedMethods:   c.AllowedMethods,
			AllowedHeaders:   c.AllowedHeaders,
			ExposedHeaders:   c.ExposedHeaders,
			AllowCredentials: c.AllowCredentials,
			MaxAge:           c.MaxAge,
		}))
	}

	r.MethodNotAllowed(h.handleMethodNotAllowed)
	r.NotFound(h.handleNotFound)

	if h.config.Server.Admin {
		r.Get("/healthz", h.handleHealth)
		r.Head("/healthz", h.handleHealth)
		if h.config.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", h.config.Metrics)
			r.Method(http.MethodHead, "/metrics", h.config.Metrics)
		}
	}

	r.Get("/*", h.handleGet)
	r.Head("/*", h.handleGet)

	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	redirect := h.config.Server.NotFoundRedirect

	key, err := bucketgate.KeyFromPath(r.URL.Path, h.config.Server.IndexDocument)
	if err != nil {
		if errors.Is(err, bucketgate.ErrInvalidInput) {
			h.logger.Debug("rejected key", "path", r.URL.Path, "err", err)
			h.write(w, r, BuildStatusResponse(http.StatusBadRequest))
			return
		}
		h.write(w, r, BuildObjectResponse(h.logger, bucketgate.NotFound(), "", redirect))
		return
	}

	outcome := h.store.GetObject(r.Context(), h.config.Bucket, key)
	h.observer.ObserveFetch(h.config.Server.Name, outcome.Kind)

	if outcome.Kind == bucketgate.OutcomeFound {
		h.logger.Debug("object found",
			"bucket", h.config.Bucket,
			"key", key,
			"size", len(outcome.Body),
			"stored_content_type", outcome.ContentType,
		)
	}

	h.write(w, r, BuildObjectResponse(h.logger, outcome, key, redirect))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, BuildStatusResponse(http.StatusOK))
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	resp := BuildStatusResponse(http.StatusMethodNotAllowed)
	resp.Header.Set("Allow", "GET, HEAD")
	h.write(w, r, resp)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, BuildStatusResponse(http.StatusNotFound))
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, resp Response) {
	if err := resp.Write(w, r); err != nil {
		h.logger.Debug("failed to write response", "path", r.URL.Path, "err", err)
	}
}
