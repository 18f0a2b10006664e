package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/config"
	"github.com/Hycient195/academia-pro-cache/di"
	"github.com/Hycient195/academia-pro-cache/health"
	"github.com/Hycient195/academia-pro-cache/httpx"
	"github.com/Hycient195/academia-pro-cache/jobs"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/Hycient195/academia-pro-cache/middleware"
	"github.com/Hycient195/academia-pro-cache/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().String("addr", "", "listen address override")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	var srv *http.Server

	app := opts.newApp(cmd,
		di.WithOnReady(func(app *di.Application) error {
			deps, err := resolveRouterDeps(app)
			if err != nil {
				return err
			}

			gin.SetMode(deps.cfg.HTTP.Mode)
			gin.DefaultWriter = logger.NewGinLogWriterWith(deps.log)
			gin.DefaultErrorWriter = logger.NewGinLogWriterWith(deps.log)

			ln, err := net.Listen("tcp", deps.cfg.HTTP.Addr)
			if err != nil {
				return err
			}
			srv = &http.Server{Handler: newRouter(deps), ReadHeaderTimeout: 10 * time.Second}

			go func() {
				deps.log.Info("admin api listening", zap.String("addr", ln.Addr().String()))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					deps.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return startJobs(app, deps.svc)
		}),
		di.WithOnShutdown(func(ctx context.Context) error {
			if srv == nil {
				return nil
			}
			return srv.Shutdown(ctx)
		}),
	)

	if err := app.Run(); err != nil {
		_ = app.Shutdown(context.Background())
		return err
	}
	return nil
}

// startJobs registers the stats report and starts the scheduler
func startJobs(app *di.Application, svc *cache.Service) error {
	sched, err := do.Invoke[*jobs.Scheduler](app.Injector())
	if err != nil {
		return err
	}
	if _, err := sched.RegisterStatsReport(svc); err != nil {
		return err
	}
	sched.Start()
	return nil
}

type routerDeps struct {
	cfg     *config.AppConfig
	svc     *cache.Service
	agg     *health.Aggregator
	log     *logger.CtxZapLogger
	metrics *middleware.HTTPMetrics
}

func resolveRouterDeps(app *di.Application) (routerDeps, error) {
	svc, err := app.CacheService()
	if err != nil {
		return routerDeps{}, err
	}
	agg, err := do.Invoke[*health.Aggregator](app.Injector())
	if err != nil {
		return routerDeps{}, err
	}
	log, err := di.ProvideCtxLogger("http")(app.Injector())
	if err != nil {
		return routerDeps{}, err
	}
	deps := routerDeps{cfg: app.Config(), svc: svc, agg: agg, log: log}

	mgr, err := do.Invoke[*telemetry.MetricsManager](app.Injector())
	if err != nil {
		return routerDeps{}, err
	}
	if mgr.IsEnabled() {
		if deps.metrics, err = middleware.NewHTTPMetrics(mgr.Meter("academia-cache/http")); err != nil {
			return routerDeps{}, err
		}
	}
	return deps, nil
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.Recovery(d.log),
		middleware.TraceID(middleware.DefaultTraceConfig()),
		middleware.RequestLog(d.log, middleware.RequestLogConfig{
			SkipPaths: []string{"/health/liveness", "/health/readiness"},
		}),
	)
	if d.metrics != nil {
		r.Use(d.metrics.Handler())
	}
	r.Use(httpx.ErrorLogging(d.log, d.cfg.HTTP.ErrorLogging))
	if d.cfg.HTTP.CacheResponses {
		r.Use(middleware.ResponseCache(d.svc, middleware.ResponseCacheConfig{
			TTL:       d.cfg.HTTP.ResponseTTL,
			SkipPaths: d.cfg.HTTP.SkipPaths,
			Logger:    d.log,
		}))
	}

	r.NoRoute(httpx.NoRouteHandler())
	r.NoMethod(httpx.NoMethodHandler())

	middleware.RegisterHealthRoutes(r, d.agg)
	registerAdminRoutes(r, d.svc)
	return r
}
