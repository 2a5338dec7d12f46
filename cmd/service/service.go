// @title        Invoice Ledger API
// @version      1.0
// @description  多商店發票帳本後端 API 文件
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @securityDefinitions.oauth2.password OAuth2Password
// @tokenUrl /api/auth/token
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"invoice-ledger/internal/cache"
	"invoice-ledger/internal/config"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/logging"
	"invoice-ledger/internal/metrics"
	"invoice-ledger/internal/router"
	"invoice-ledger/internal/service"
	"invoice-ledger/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "invoice-ledger/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
	getenv          = os.Getenv
)

// requestLogger 將 echo 存取紀錄導向 slog
func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.ErrorContext(c.Request().Context(), "request", append(attrs, "err", v.Error)...)
				return nil
			}
			log.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	})
}

func newEcho(cfg *config.Config, log *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	}
	e.Use(m.Middleware())
	return e
}

func run() error {
	cfg, err := config.Load(getenv)
	if err != nil {
		return err
	}
	log := logging.Setup(os.Stderr, cfg.LogLevel)

	tokens, err := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("無效的 JWT 設定: %v", err)
	}

	db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer rdb.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	wp := newWorkerPool(cfg.WorkerCount, cfg.WorkerQueue)
	defer wp.Stop()

	m := metrics.New()
	access := service.NewAccess(db, rdb, cfg.ShopCacheTTL, log)

	e := newEcho(cfg, log, m)
	router.Setup(e, router.Deps{
		DB:        db,
		Cache:     rdb,
		Auth:      service.NewAuth(db, tokens, access, wp, m, log),
		Shops:     access,
		Ledger:    service.NewLedger(db, tokens, access, m, log),
		Query:     service.NewQuery(db, access),
		Directory: service.NewDirectory(db, access, log),
		Metrics:   m,
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	log.Info("server starting", "addr", cfg.HTTPAddr)
	if err := startServer(e, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("service exited", "err", err)
		exitFunc(1)
	}
}
