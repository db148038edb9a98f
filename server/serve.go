package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jonwraymond/rolegate/observe"
)

// ShutdownTimeout bounds how long in-flight requests may drain after the
// serving context is cancelled.
const ShutdownTimeout = 10 * time.Second

// NewHTTPServer returns an http.Server for handler with the gateway's
// read, write and idle timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run listens on srv.Addr and serves until ctx is cancelled.
func Run(ctx context.Context, srv *http.Server, logger observe.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", srv.Addr, err)
	}
	return Serve(ctx, srv, ln, logger)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts srv
// down gracefully. It returns nil after a clean shutdown.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, logger observe.Logger) error {
	if logger == nil {
		logger = observe.NopLogger()
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", observe.F("addr", ln.Addr().String()))
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)

	case <-ctx.Done():
		logger.Info(context.Background(), "shutting down", observe.F("cause", context.Cause(ctx).Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("server: graceful shutdown: %w", err)
		}

		logger.Info(context.Background(), "server stopped")
		return nil
	}
}
