package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pescastur/storefront/internal/api"
	"github.com/pescastur/storefront/internal/domain/catalog"
	"github.com/pescastur/storefront/internal/domain/checkout"
	"github.com/pescastur/storefront/internal/domain/customer"
	"github.com/pescastur/storefront/internal/email"
	"github.com/pescastur/storefront/internal/repository"
	"github.com/pescastur/storefront/internal/session"
	"github.com/pescastur/storefront/pkg/health"
	"github.com/pescastur/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	shippingFee, err := decimal.NewFromString(cfg.ShippingFee)
	if err != nil {
		return errors.Wrap(err, "parse shipping fee")
	}

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis client for cart snapshots.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return errors.Wrap(err, "parse redis URL")
	}
	rdb := redis.NewClient(redisOpts)
	defer func() { _ = rdb.Close() }()

	// Health check service.
	healthSvc := health.NewService()
	healthSvc.Register("postgres", health.Readiness, 5*time.Second, health.PingCheck(pool))
	healthSvc.Register("redis", health.Readiness, 5*time.Second, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthSvc.Register("goroutines", health.Liveness, time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Domain services.
	catalogSvc := catalog.NewService(productRepo, cfg.Catalog.CacheTTL)

	var mailer checkout.Mailer = email.NewHTTPSender(cfg.EmailEndpoint, nil)
	if cfg.EmailEndpoint == "" {
		lg.Warn("Email endpoint not configured, confirmations will be logged only")
		mailer = logMailer{lg: lg}
	}
	checkoutSvc := checkout.NewService(orderRepo, mailer, customer.NewValidation(), shippingFee)

	// Shopping sessions with Redis-backed cart snapshots.
	sessions := session.NewManager(session.NewRedisStore(rdb, cfg.Session.TTL), cfg.Session.MaxIdle)
	sessions.Start(ctx, cfg.Session.SweepPeriod)

	// HTTP handler tree: probes + API subtree.
	h := api.NewHandler(catalogSvc, sessions, checkoutSvc)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveHandler)
	mux.HandleFunc("/readyz", healthSvc.ReadyHandler)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	rl := httpmiddleware.NewRateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	rl.Start()
	defer rl.Close()

	instrumented := otelhttp.NewHandler(mux, "pescastur-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowedOrigins:   cfg.CORS.Origins,
				AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           24 * time.Hour,
			}),
			httpmiddleware.RateLimit(rl),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	// Graceful shutdown: stop advertising readiness, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// logMailer stands in for the mail service in local development.
type logMailer struct {
	lg *zap.Logger
}

func (m logMailer) Send(_ context.Context, to, subject, _ string) error {
	m.lg.Info("Order confirmation (mail disabled)",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
