package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/cache"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/config"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/db"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/events"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/httpserver"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/auth"
	loggingmw "github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/metrics"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/middleware/ratelimit"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/repo"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/search"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/service"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/upload"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.Env)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBDriver)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	producer := events.New(cfg.KafkaBrokers)

	r := &repo.GormRepo{DB: gdb}
	products := &service.ProductService{Repo: r, Events: producer}

	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			products.Index = search.NewIndex(es, cfg.ESIndex)
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = cache.NewClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("cache_disabled", "reason", "redis unavailable", "error", err)
			rdb = nil
		} else {
			products.Cache = cache.NewTopProducts(rdb, cfg.ServiceName, cfg.TopCacheTTL)
		}
	}

	m := metrics.New(cfg.ServiceName)
	limiter := ratelimit.New(cfg.LoginRatePerSec, cfg.LoginRateBurst)
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(10*time.Minute, stopCleanup)

	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = ratelimit.IPExtractor(cfg.TrustProxy)
	e.HTTPErrorHandler = httpserver.ErrorHandler(cfg.Production())
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(m.Middleware)
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		DB:           gdb,
		Auth:         auth.New(cfg.JWTSecret, r),
		Users:        &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, JWTSecret: cfg.JWTSecret, Events: producer}},
		Product:      &httpserver.ProductHTTP{Svc: products},
		Orders:       &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: producer}},
		Upload:       &httpserver.UploadHTTP{Store: upload.NewStore(cfg.UploadDir)},
		Metrics:      m,
		LoginLimiter: limiter,
		UploadDir:    cfg.UploadDir,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	close(stopCleanup)

	db.Close(gdb)
	if err := producer.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_failed", "error", err)
		}
	}

	logger.Info("server_stopped")
}
