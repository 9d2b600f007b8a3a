package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dorm-management-system/api/internal/handlers"
	"dorm-management-system/api/internal/middleware"
	"dorm-management-system/api/internal/models"
	"dorm-management-system/api/internal/reporting"
	"dorm-management-system/api/internal/session"
	"dorm-management-system/api/internal/store"
	"dorm-management-system/shared/authx"
	"dorm-management-system/shared/cachex"
	"dorm-management-system/shared/clients/genai"
	"dorm-management-system/shared/config"
	"dorm-management-system/shared/events"
	"dorm-management-system/shared/httpx"
	"dorm-management-system/shared/influxx"
	"dorm-management-system/shared/lockx"
	"dorm-management-system/shared/logx"
	"dorm-management-system/shared/metricsx"
	"dorm-management-system/shared/observability"
)

type statusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Env     string `json:"env,omitempty"`
	Version string `json:"version,omitempty"`
}

func main() {
	cfg, readyProblems := config.Load("dorm-api", 8080)
	version := strings.TrimSpace(os.Getenv("VERSION"))
	logger := logx.New(cfg.ServiceName, cfg.Env, version, cfg.LogLevel)

	if cfg.SessionSecret == "" {
		readyProblems = append(readyProblems, config.Problem{Field: "SESSION_SECRET", Message: "SESSION_SECRET is required"})
	}

	if cfg.OtelEnabled {
		if shutdown, err := observability.InitTracer(context.Background(), observability.TracerConfig{
			ServiceName: cfg.ServiceName,
			Env:         cfg.Env,
			Endpoint:    cfg.OtelEndpoint,
			Insecure:    cfg.OtelInsecure,
			SampleRatio: cfg.OtelSampleRatio,
		}); err == nil {
			defer func() { _ = shutdown(context.Background()) }()
		} else {
			logger.Warn(context.Background(), "otel_init_failed", "tracer init failed", slog.Any("error", err))
		}
	}

	metricsx.Register()

	st := store.New(cfg.TotalRooms, cfg.MaxTenantsPerRoom)
	if cfg.SeedDemoData {
		st.Seed()
		logger.Info(context.Background(), "seed_loaded", "demo data loaded",
			slog.Int("total_rooms", cfg.TotalRooms),
			slog.Int("max_tenants_per_room", cfg.MaxTenantsPerRoom),
		)
	}

	issuer, err := authx.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		issuer = nil
	}

	var cache *cachex.Client
	if cfg.RedisAddr != "" {
		cache, err = cachex.New(cfg)
		if err != nil {
			readyProblems = append(readyProblems, config.Problem{Field: "REDIS_ADDR", Message: "failed to initialize redis client"})
		} else {
			defer cache.Close()
		}
	}

	var generator reporting.ContentGenerator
	if cfg.GenAIEnabled {
		aiClient, err := genai.New(cfg)
		if err != nil {
			readyProblems = append(readyProblems, config.Problem{Field: "GENAI_API_URL", Message: "failed to initialize genai client"})
		} else {
			generator = aiClient
		}
	}
	var reportCache reporting.ReportCache
	if cache != nil {
		reportCache = cache
	}
	reports := reporting.NewService(st, generator, reportCache, time.Duration(cfg.ReportCacheTTLSec)*time.Second, logger)

	// Every audit entry is fanned out to the archive worker. The sink only
	// enqueues; the worker owns the Postgres write and the Kafka publish.
	if cfg.AuditArchiveOn && cfg.AsynqEnabled && cfg.AsynqRedisAddr != "" {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPass,
			DB:       cfg.AsynqRedisDB,
		})
		defer asynqClient.Close()
		st.SetAuditSink(func(entry models.AuditLog) {
			payload, err := json.Marshal(entry)
			if err != nil {
				return
			}
			task := asynq.NewTask(events.TaskAuditArchive, payload, asynq.Queue(cfg.AsynqQueue), asynq.MaxRetry(10))
			if _, err := asynqClient.Enqueue(task); err != nil {
				logger.Warn(context.Background(), "audit_enqueue_failed", "audit archive enqueue failed",
					slog.String("audit_id", entry.ID),
					slog.String("error", err.Error()),
				)
			}
		})
	}

	resolver := session.NewResolver(st, cfg.AdminEmail, cfg.AdminPassword)
	h := &handlers.Handlers{
		Store:    st,
		Resolver: resolver,
		Reports:  reports,
		Issuer:   issuer,
		Logger:   logger,
	}

	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("GET /metrics", metricsx.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, statusResponse{
			Status:  "ok",
			Service: cfg.ServiceName,
			Env:     cfg.Env,
			Version: version,
		})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if len(readyProblems) > 0 {
			httpx.WriteError(
				w,
				r,
				http.StatusServiceUnavailable,
				"FAILED_PRECONDITION",
				"service not ready: invalid configuration",
				map[string]any{"problems": readyProblems},
			)
			return
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				httpx.WriteError(
					w,
					r,
					http.StatusServiceUnavailable,
					"FAILED_PRECONDITION",
					"service not ready: redis unavailable",
					map[string]any{"problem": "redis_ping_failed"},
				)
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, statusResponse{
			Status:  "ready",
			Service: cfg.ServiceName,
			Env:     cfg.Env,
			Version: version,
		})
	})

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})

	isPublic := func(r *http.Request) bool {
		switch r.URL.Path {
		case "/healthz", "/readyz", "/metrics",
			"/api/v1/auth/admin/login", "/api/v1/auth/tenant/login":
			return true
		}
		return false
	}
	isLogin := func(r *http.Request) bool {
		return strings.HasPrefix(r.URL.Path, "/api/v1/auth/")
	}

	handler := httpx.WrapServeMux(mux, notFound)
	handler = middleware.AuthMiddleware{
		Issuer: issuer,
		Skip:   isPublic,
	}.Wrap(handler)
	handler = middleware.RateLimitMiddleware{
		Limiter: middleware.NewIPRateLimiter(5, 10, 2*time.Minute),
		Skip:    func(r *http.Request) bool { return !isLogin(r) },
	}.Wrap(handler)
	handler = middleware.CORSMiddleware{
		AllowCredentials: false,
		MaxAge:           10 * time.Minute,
	}.Wrap(handler)
	handler = httpx.WithTimeout(cfg.RequestTimeout, handler)
	handler = httpx.WithRequestID(handler)
	handler = httpx.WithRecover(logger, handler)
	handler = metricsx.Instrument(handler)
	handler = httpx.WithRequestLog(logger, httpx.RequestLogOptions{SkipPaths: map[string]bool{"/healthz": true, "/metrics": true}}, handler)
	if cfg.OtelEnabled {
		handler = otelhttp.NewHandler(handler, "http.server")
	}

	samplerCtx, stopSampler := context.WithCancel(context.Background())
	defer stopSampler()
	if cfg.InfluxURL != "" {
		influxClient, err := influxx.New(cfg)
		if err != nil {
			logger.Warn(context.Background(), "influx_init_failed", "influx init failed", slog.Any("error", err))
		} else {
			defer influxClient.Close()
			go sampleOccupancy(samplerCtx, cfg, logger, st, cache, influxClient)
		}
	}

	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.HTTPPort)),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "service_start", "starting service",
			slog.String("addr", server.Addr),
			slog.Int("http_port", cfg.HTTPPort),
			slog.String("log_level", cfg.LogLevel),
			slog.Int("request_timeout_ms", cfg.RequestTimeoutMS),
			slog.Int("total_rooms", cfg.TotalRooms),
		)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info(context.Background(), "shutdown_signal", "received signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "server_failed", "server failed",
				slog.String("error_code", "INTERNAL_ERROR"),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(context.Background(), "shutdown_failed", "shutdown failed",
			slog.String("error_code", "INTERNAL_ERROR"),
			slog.String("error", err.Error()),
		)
	}
	logger.Info(context.Background(), "service_stop", "service stopped")
}

// sampleOccupancy periodically writes an occupancy snapshot to InfluxDB.
// When Redis is available, a short-lived lock keeps multiple API instances
// from writing duplicate samples for the same tick.
func sampleOccupancy(ctx context.Context, cfg config.Config, logger logx.Logger, st *store.Store, cache *cachex.Client, influxClient *influxx.Client) {
	interval := time.Duration(cfg.OccupancySampleSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if cache != nil {
			lock, ok, err := lockx.Acquire(ctx, cache.Client(), "lock:occupancy-sampler", interval/2)
			if err != nil || !ok {
				continue
			}
			writeOccupancySample(ctx, cfg, logger, st, influxClient)
			_ = lockx.Release(ctx, cache.Client(), lock)
			continue
		}
		writeOccupancySample(ctx, cfg, logger, st, influxClient)
	}
}

func writeOccupancySample(ctx context.Context, cfg config.Config, logger logx.Logger, st *store.Store, influxClient *influxx.Client) {
	stats := reporting.Aggregate(st.AllTenants(ctx), st.MaintenanceRequests(ctx), st.TotalRooms(), st.MaxTenantsPerRoom())
	metricsx.SetOccupancyPercent(float64(stats.OccupancyPercentage))

	err := influxClient.WritePoint(ctx, "dorm_occupancy",
		map[string]string{"service": cfg.ServiceName, "env": cfg.Env},
		map[string]any{
			"tenants":           stats.TotalTenants,
			"occupancy_percent": stats.OccupancyPercentage,
			"open_requests":     stats.OpenMaintenanceRequests,
		},
		time.Now().UTC(),
	)
	if err != nil {
		metricsx.IncInfluxWriteFailure()
		logger.Warn(ctx, "influx_write_failed", "occupancy sample write failed", slog.Any("error", err))
	}
}
