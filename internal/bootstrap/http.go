package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/target/citation-poller/config"
	httpx "github.com/target/citation-poller/internal/http"
)

const (
	minWriteTimeout        = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// NewHTTPServer builds the API server. The write timeout leaves room for a full poll cycle,
// since POST /api/invocations runs one synchronously.
func NewHTTPServer(appCfg *config.AppConfig, svc ServiceContainer, logger *slog.Logger) *http.Server {
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(routerServices(svc, appCfg.HTTP, logger)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      max(appCfg.Poll.Timeout+minWriteTimeout, minWriteTimeout),
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}

// serveHTTP listens until ctx ends, then drains in-flight requests for up to timeout.
// A listen failure is returned immediately.
func serveHTTP(ctx context.Context, srv *http.Server, timeout time.Duration, logger *slog.Logger) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "starting HTTP server", "addr", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

func routerServices(svc ServiceContainer, httpCfg config.HTTPConfig, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		Triggers:     svc.Triggers,
		MaxBodyBytes: httpCfg.MaxBodyBytes,
		Logger:       logger,
		Readiness:    map[string]httpx.HealthCheck{},
	}
	// Typed nils must not reach the router's optional interface fields.
	if svc.Cycle != nil {
		rs.Cycle = svc.Cycle
	}
	if svc.Campaigns != nil {
		rs.Campaigns = svc.Campaigns
	}
	if svc.DB != nil {
		rs.Readiness["postgres"] = svc.DB.PingContext
	}
	if svc.Redis != nil {
		rs.Readiness["redis"] = func(ctx context.Context) error { return svc.Redis.Ping(ctx).Err() }
	}
	return rs
}
