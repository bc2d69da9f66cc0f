package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"suitup-be/internal/auth"
	"suitup-be/internal/brand"
	"suitup-be/internal/cache"
	"suitup-be/internal/chatbot"
	"suitup-be/internal/config"
	"suitup-be/internal/db"
	"suitup-be/internal/logger"
	"suitup-be/internal/media"
	"suitup-be/internal/metrics"
	"suitup-be/internal/middleware"
	"suitup-be/internal/order"
	"suitup-be/internal/product"
	"suitup-be/internal/rest"
	"suitup-be/internal/telemetry"
	"suitup-be/internal/tryon"
	"suitup-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	serviceName     = "suitup-be"
	sessionTTL      = auth.DefaultTTL
	brandCacheTTL   = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// newServer wires repositories, services and the HTTP router. ctx bounds
// the rate limiter's cleanup loop.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, rdb *redis.Client) http.Handler {
	m := metrics.New()

	var brandCache cache.Cache = cache.Noop{}
	if rdb != nil {
		brandCache = cache.NewRedisCache(rdb, brandCacheTTL)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, sessionTTL)

	userSvc := user.NewService(user.NewRepository(database), issuer)
	brandSvc := brand.NewService(brand.NewRepository(database), brandCache)
	productSvc := product.NewService(product.NewRepository(database), brandSvc)
	orderSvc := order.NewService(order.NewRepository(database), userSvc, m, cfg.OrderListTimeout)

	uploader := media.NewCloudinaryUploader(media.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}, m)

	chatSvc := chatbot.NewService(chatbot.Config{
		APIKey:        cfg.OpenAIAPIKey,
		BaseURL:       cfg.OpenAIBaseURL,
		Model:         cfg.OpenAIModel,
		AdvancedModel: cfg.OpenAIAdvancedModel,
	}, productSvc, brandSvc, m)

	tryOnSvc := tryon.NewService(tryon.Config{
		APIKey:  cfg.FashnAPIKey,
		BaseURL: cfg.FashnBaseURL,
	}, m)

	h := rest.NewHandler(rest.Deps{
		Users:        userSvc,
		Brands:       brandSvc,
		Products:     productSvc,
		Orders:       orderSvc,
		Uploader:     uploader,
		Chatbot:      chatSvc,
		TryOn:        tryOnSvc,
		SessionTTL:   sessionTTL,
		SecureCookie: cfg.AppEnv == "production",
	})

	return rest.NewRouter(h, rest.RouterConfig{
		Tokens:         issuer,
		Limiter:        middleware.NewRateLimiter(ctx),
		Metrics:        m,
		FrontendOrigin: cfg.FrontendOrigin,
	})
}

func newRedisClient(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.L().Warn("redis unreachable, brand cache will fall through to the database",
			zap.String("addr", addr),
			zap.Error(err),
		)
	}
	return client
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	if rdb := newRedisClient(ctx, cfg.RedisAddr); rdb != nil {
		defer rdb.Close()
		return serve(ctx, cfg, database, rdb)
	}
	return serve(ctx, cfg, database, nil)
}

func serve(ctx context.Context, cfg *config.Config, database *sql.DB, rdb *redis.Client) error {
	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracer: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(tctx); err != nil {
			logger.L().Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(ctx, cfg, database, rdb),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Try-on polling can take about 40s.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.L().Info("server stopped")
	return nil
}
