// Package server runs several independently configured HTTP listeners in one
// process.
//
// Every listener binds its own address and serves on its own goroutine. A
// listener that fails to bind or dies while serving is recorded in its Result;
// its siblings keep serving. Start returns once every listener has terminated,
// which normally happens when the context passed to Start is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sagarc03/bucketgate"
)

// State is the lifecycle state of a listener.
type State int

const (
	StateStarting State = iota
	StateServing
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateServing:
		return "serving"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Listener pairs a listener configuration with the handler serving it.
type Listener struct {
	Config  bucketgate.ServerConfig
	Handler http.Handler
}

// Result is the final state of one listener.
type Result struct {
	Name string
	// Addr is the bound address once the listener reached StateServing,
	// the configured address otherwise.
	Addr  string
	State State
	Err   error
}

// Results holds one Result per listener, in the order the listeners were given.
type Results []Result

// Failed returns the results of listeners that ended in StateFailed.
func (rs Results) Failed() []Result {
	var failed []Result
	for _, r := range rs {
		if r.State == StateFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins the errors of all failed listeners. It is nil when every
// listener stopped cleanly.
func (rs Results) Err() error {
	var errs []error
	for _, r := range rs.Failed() {
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

// Options configures a Runtime.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
	// OnStateChange is called on every state transition. addr is only set for
	// StateServing. It is called from the listener goroutines and must be safe
	// for concurrent use.
	OnStateChange func(name string, state State, addr net.Addr)
}

// Runtime starts and supervises listeners.
type Runtime struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Runtime. Zero timeouts fall back to 30s read/write/shutdown
// and 120s idle.
func New(opts Options) *Runtime {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 120 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runtime{opts: opts, logger: logger}
}

// Start runs every listener concurrently and blocks until all of them have
// terminated. Cancelling ctx shuts all listeners down gracefully.
func (rt *Runtime) Start(ctx context.Context, listeners []Listener) Results {
	results := make(Results, len(listeners))

	var wg sync.WaitGroup
	for i, l := range listeners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = rt.run(ctx, l)
		}()
	}
	wg.Wait()

	return results
}

func (rt *Runtime) run(ctx context.Context, l Listener) Result {
	name := l.Config.Name
	logger := rt.logger.With("listener", name)
	res := Result{Name: name, Addr: l.Config.Addr, State: StateStarting}

	rt.transition(logger, &res, StateStarting, nil, nil)

	if err := l.Config.Validate(); err != nil {
		rt.transition(logger, &res, StateFailed, nil, fmt.Errorf("listener %s: %w", name, err))
		return res
	}
	if l.Handler == nil {
		rt.transition(logger, &res, StateFailed, nil, fmt.Errorf("listener %s: %w: nil handler", name, bucketgate.ErrInvalidInput))
		return res
	}

	if ctx.Err() != nil {
		rt.transition(logger, &res, StateStopped, nil, nil)
		return res
	}

	ln, err := net.Listen("tcp", l.Config.Addr)
	if err != nil {
		rt.transition(logger, &res, StateFailed, nil, fmt.Errorf("listener %s: bind %s: %w", name, l.Config.Addr, err))
		return res
	}

	srv := &http.Server{
		Handler:      l.Handler,
		ReadTimeout:  rt.opts.ReadTimeout,
		WriteTimeout: rt.opts.WriteTimeout,
		IdleTimeout:  rt.opts.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	res.Addr = ln.Addr().String()
	rt.transition(logger, &res, StateServing, ln.Addr(), nil)

	done := make(chan struct{})
	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("shutting down listener")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.opts.ShutdownTimeout)
			defer cancel()

			err := srv.Shutdown(shutdownCtx)
			if err != nil {
				_ = srv.Close()
			}
			shutdownErr <- err
		case <-done:
			shutdownErr <- nil
		}
	}()

	serveErr := srv.Serve(ln)
	close(done)
	stopErr := <-shutdownErr

	switch {
	case !errors.Is(serveErr, http.ErrServerClosed):
		rt.transition(logger, &res, StateFailed, nil, fmt.Errorf("listener %s: serve: %w", name, serveErr))
	case stopErr != nil:
		rt.transition(logger, &res, StateFailed, nil, fmt.Errorf("listener %s: shutdown: %w", name, stopErr))
	default:
		rt.transition(logger, &res, StateStopped, nil, nil)
	}

	return res
}

func (rt *Runtime) transition(logger *slog.Logger, res *Result, state State, addr net.Addr, err error) {
	res.State = state
	res.Err = err

	switch state {
	case StateServing:
		logger.Info("listener serving", "addr", res.Addr)
	case StateStopped:
		logger.Info("listener stopped")
	case StateFailed:
		logger.Debug("listener failed", "err", err)
	default:
		logger.Debug("listener " + state.String())
	}

	if rt.opts.OnStateChange != nil {
		rt.opts.OnStateChange(res.Name, state, addr)
	}
}
