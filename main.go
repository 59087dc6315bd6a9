package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lastutorials/pdfsplit/internal/config"
	"github.com/lastutorials/pdfsplit/internal/database"
	"github.com/lastutorials/pdfsplit/internal/document/handler"
	"github.com/lastutorials/pdfsplit/internal/document/repository"
	"github.com/lastutorials/pdfsplit/internal/document/service"
	"github.com/lastutorials/pdfsplit/internal/oidc"
	"github.com/lastutorials/pdfsplit/internal/storage"
	"github.com/lastutorials/pdfsplit/internal/tokens"
	"github.com/lastutorials/pdfsplit/pkg/logger"
	"github.com/lastutorials/pdfsplit/pkg/metrics"
	"github.com/lastutorials/pdfsplit/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// deps are the runtime collaborators resolved at startup; nil members are
// optional backends that weren't configured or were unreachable.
type deps struct {
	svc      *service.Service
	backend  string
	redis    *redis.Client
	blobs    *storage.MinIOStorage
	verifier middleware.Verifier
	cleanup  []func()
}

func (d *deps) close() {
	for i := len(d.cleanup) - 1; i >= 0; i-- {
		d.cleanup[i]()
	}
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: level=%s mongo=%v redis=%v minio=%v auth=%v", logger.LevelString(), cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Enabled(), cfg.AuthEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := connect(ctx, cfg)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer d.close()

	if cfg.Fixtures.Seed {
		if _, err := d.svc.SeedFixtures(ctx); err != nil {
			logger.Warnf("fixture seeding failed: %v", err)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := newRouter(cfg, d)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("document service listening on %s (backend=%s)", srv.Addr, d.backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// connect resolves the repository backend, blob store and token verifier.
// Mongo wins over Redis; memory is the fallback when neither is usable.
func connect(ctx context.Context, cfg *config.Config) (*deps, error) {
	d := &deps{}

	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
			_ = client.Close()
		} else {
			d.redis = client
			d.cleanup = append(d.cleanup, func() { _ = client.Close() })
			logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
		}
	}

	var repo repository.Repository
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Warnf("could not connect to MongoDB, falling back: %v", err)
		} else {
			d.cleanup = append(d.cleanup, func() { _ = client.Disconnect(context.Background()) })
			col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
			mr, err := repository.NewMongoRepo(ctx, col)
			if err != nil {
				return nil, err
			}
			repo, d.backend = mr, "mongo"
		}
	}
	if repo == nil && cfg.Redis.UseForDocuments {
		if d.redis == nil {
			return nil, errors.New("REDIS_DOCUMENTS set but Redis is unreachable")
		}
		repo, d.backend = repository.NewRedisRepo(d.redis, cfg.Redis.Prefix), "redis"
	}
	if repo == nil {
		repo, d.backend = repository.NewMemoryRepo(), "memory"
	}

	var opts []service.Option
	if cfg.MinIO.Enabled() {
		blobs, err := storage.NewMinIOStorage(ctx, &cfg.MinIO)
		if err != nil {
			logger.Warnf("MinIO unavailable, keeping payloads inline: %v", err)
		} else {
			d.blobs = blobs
			opts = append(opts, service.WithBlobStore(blobs))
		}
	}
	d.svc = service.New(repo, opts...)

	v, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return nil, err
	}
	d.verifier = v
	return d, nil
}

// newVerifier picks OIDC, then HMAC JWT, then the insecure decoder.
func newVerifier(ctx context.Context, a config.AuthConfig) (middleware.Verifier, error) {
	if a.KeycloakURL != "" && a.ClientID != "" {
		v, err := oidc.NewVerifier(ctx, oidc.IssuerURL(a.KeycloakURL, a.Realm), a.ClientID)
		if err == nil {
			return v, nil
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if a.JWTSecret != "" {
		v, err := tokens.NewHMACVerifier(a.JWTSecret)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	if a.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier(), nil
	}
	if a.KeycloakURL != "" {
		return nil, fmt.Errorf("auth configured for %s but no verifier could be created", a.KeycloakURL)
	}
	return nil, nil
}

func newRouter(cfg *config.Config, d *deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// identify before limiting so authenticated callers get their own bucket
	if d.verifier != nil {
		r.Use(middleware.IdentifyMiddleware(d.verifier))
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ready := true
		status := map[string]bool{"documents": d.svc != nil}
		if d.svc == nil {
			ready = false
		}
		if cfg.Redis.Host != "" {
			status["redis"] = d.redis != nil && d.redis.Ping(c.Request.Context()).Err() == nil
			if !status["redis"] && (cfg.RateLimit.UseRedis || cfg.Redis.UseForDocuments) {
				ready = false
			}
		}
		if cfg.MinIO.Enabled() {
			status["minio"] = d.blobs != nil
		}
		if cfg.AuthEnabled() {
			status["auth"] = d.verifier != nil
			ready = ready && d.verifier != nil
		}
		code, label := http.StatusOK, "ready"
		if !ready {
			code, label = http.StatusServiceUnavailable, "not_ready"
		}
		c.JSON(code, gin.H{"status": label, "backend": d.backend, "deps": status, "uptime": time.Since(startTime).String()})
	})

	var writeMW []gin.HandlerFunc
	if d.verifier != nil {
		writeMW = append(writeMW, middleware.AuthMiddleware(d.verifier))
	}
	handler.RegisterDocumentRoutes(r, d.svc, writeMW...)
	handler.RegisterSwagger(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
