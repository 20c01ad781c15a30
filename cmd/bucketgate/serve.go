package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate"
	"github.com/sagarc03/bucketgate/config"
	gatehttp "github.com/sagarc03/bucketgate/http"
	"github.com/sagarc03/bucketgate/metrics"
	"github.com/sagarc03/bucketgate/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway and management listeners",
	Long: `Start both HTTP listeners and serve until SIGINT or SIGTERM.

Each listener is reported separately on exit. The command exits non-zero
if any listener failed to bind or stopped with an error.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "gateway listen address (default: :80, env: BUCKETGATE_GATEWAY_ADDR)")
	serveCmd.Flags().String("management-addr", "", "management listen address (default: :8080, env: BUCKETGATE_MANAGEMENT_ADDR)")
	serveCmd.Flags().String("index-document", "", "gateway index document (default: index.html)")
	serveCmd.Flags().String("not-found-redirect", "", "gateway redirect target for missing objects")
	serveCmd.Flags().Bool("migrate", false, "create the objects table before serving (sqlite, postgres)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	migrate, _ := cmd.Flags().GetBool("migrate")

	b, err := openBackend(ctx, cfg.Storage, migrate)
	if err != nil {
		return err
	}
	defer b.close()

	logger := slog.Default()
	reg := metrics.NewRegistry()

	rt := server.New(server.Options{
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
		OnStateChange: func(name string, state server.State, _ net.Addr) {
			reg.SetListenerState(name, int(state))
		},
	})

	logger.Info("starting bucketgate",
		"version", version,
		"backend", cfg.Storage.Backend,
		"bucket", cfg.Storage.Bucket,
	)

	results := rt.Start(ctx, buildListeners(cfg, b.store, reg, logger))

	return reportResults(logger, results)
}

// buildListeners creates one handler per configured listener. Listeners with
// Admin set also get the metrics endpoint.
func buildListeners(cfg *config.Config, store bucketgate.ObjectStore, reg *metrics.Registry, logger *slog.Logger) []server.Listener {
	var listeners []server.Listener

	for _, sc := range cfg.Listeners() {
		hc := gatehttp.HandlerConfig{
			Server:   sc,
			Bucket:   cfg.Storage.Bucket,
			Observer: reg,
			Logger:   logger,
		}
		if sc.Admin {
			hc.Metrics = reg.Handler()
		}

		listeners = append(listeners, server.Listener{
			Config:  sc,
			Handler: gatehttp.NewHandler(&hc, store).Router(),
		})
	}

	return listeners
}

func reportResults(logger *slog.Logger, results server.Results) error {
	for _, r := range results {
		if r.State == server.StateFailed {
			logger.Error("listener failed", "listener", r.Name, "addr", r.Addr, "err", r.Err)
			continue
		}
		logger.Info("listener exited", "listener", r.Name, "addr", r.Addr, "state", r.State.String())
	}

	if err := results.Err(); err != nil {
		return fmt.Errorf("%d of %d listeners failed: %w", len(results.Failed()), len(results), err)
	}
	return nil
}
