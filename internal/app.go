package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tvd/internal/controllers"
	"tvd/internal/providers"
	"tvd/internal/structures"
	"tvd/internal/upstream"
	"tvd/internal/video/interfaces"
)

type App struct {
	WebServer *http.Server
}

func NewApp(healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, subscriber *upstream.Subscriber, authenticator *upstream.Authenticator, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface, auth providers.AuthProviderInterface) (*App, error) {
	// Inner mux: API routes plus the page surface as fallback
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}
	apiMux.Handle("/", http.FileServer(http.Dir(conf.Pages.Dir)))

	// Gate inside, metrics outside: rejected requests still show up in the
	// request counters as redirects.
	gated := providers.SessionGate(conf, auth, apiMux)
	instrumented := providers.MetricsMiddleware(metrics, gated)

	// Outer mux: infrastructure + gated surface
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumented)

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	err := scheduler.Restore()
	if err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	app := &App{
		WebServer: &http.Server{
			Addr:        conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:     mux,
			ReadTimeout: 5 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
	}

	scheduler.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := authenticator.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Errorf(providers.TypeApp, "Gateway auth failed: %s", err)
		}
	}()
	go func() {
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Errorf(providers.TypeApp, "Event subscription stopped: %s", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return nil, fmt.Errorf("server error: %w", err)
	}

	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err = app.WebServer.Shutdown(shutdownCtx); err != nil {
		return nil, err
	}
	err = scheduler.Persist()
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
