package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/rolegate/auth"
	"github.com/jonwraymond/rolegate/config"
	"github.com/jonwraymond/rolegate/health"
	"github.com/jonwraymond/rolegate/observe"
	"github.com/jonwraymond/rolegate/server"
)

const serviceName = "rolegate"

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway HTTP server",
		Long:  `Starts the HTTP server and blocks until SIGINT or SIGTERM, then drains in-flight requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a.cfg, a.codec(), cmd)
		},
	}
}

// observerConfig maps process configuration onto the telemetry stack.
func observerConfig(cfg *config.Config, cmd *cobra.Command) observe.Config {
	return observe.Config{
		ServiceName: serviceName,
		Version:     Version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.TracingExporter != config.DefaultExporter,
			Exporter:  cfg.TracingExporter,
			SamplePct: cfg.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.MetricsExporter != config.DefaultExporter,
			Exporter: cfg.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.LogLevel,
			Writer:  cmd.ErrOrStderr(),
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, codec *auth.TokenCodec, cmd *cobra.Command) (err error) {
	obs, err := observe.NewObserver(ctx, observerConfig(cfg, cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, obs.Shutdown(shutdownCtx))
	}()

	telemetry, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return err
	}
	logger := telemetry.Logger()

	users := auth.NewStaticUserStore(auth.DefaultUsers()...)

	checks := health.NewAggregator()
	checks.Register("signing_key", health.NewSigningKeyChecker(codec))
	checks.Register("users", health.NewUserStoreChecker(users))
	checks.Register("runtime", health.NewRuntimeChecker(health.RuntimeCheckerConfig{}))

	router := server.NewRouter(server.RouterOptions{
		Codec:          codec,
		Users:          users,
		Telemetry:      telemetry,
		Health:         checks,
		MetricsHandler: obs.MetricsHandler(),
		CORSOrigins:    cfg.CORSOrigins,
	})

	logger.Info(ctx, "starting rolegate",
		observe.F("version", Version),
		observe.F("addr", cfg.Addr()),
		observe.F("users", users.Len()),
		observe.F("token_ttl", cfg.TokenTTL.String()),
		observe.F("tracing", cfg.TracingExporter),
		observe.F("metrics", cfg.MetricsExporter),
	)

	return server.Run(ctx, server.NewHTTPServer(cfg.Addr(), router), logger)
}
