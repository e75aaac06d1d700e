// Package server runs the HTTP listener and stops it cleanly.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may finish after a stop.
const ShutdownTimeout = 5 * time.Second

const (
	minWriteTimeout = 15 * time.Second
	// writeHeadroom is left after a handler's own deadline for encoding
	// and flushing the response.
	writeHeadroom = 5 * time.Second
)

// New constructs an *http.Server with read, write and idle timeouts set.
// The write timeout always outlasts requestTimeout, the deadline handlers
// put on store and relay calls.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      WriteTimeout(requestTimeout),
		IdleTimeout:       60 * time.Second,
	}
}

// WriteTimeout returns the server write timeout for a handler deadline.
func WriteTimeout(requestTimeout time.Duration) time.Duration {
	return max(minWriteTimeout, requestTimeout+writeHeadroom)
}

// Run serves on ln until ctx is cancelled, then shuts srv down. A nil ln
// listens on srv.Addr.
func Run(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.SugaredLogger) error {
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", srv.Addr)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("HTTP server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, stopping server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("server gracefully stopped")
		return nil
	})
	return g.Wait()
}
