package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mar1uz/cabana-test/internal/api"
	"github.com/mar1uz/cabana-test/internal/api/handler"
	"github.com/mar1uz/cabana-test/internal/api/middleware"
	"github.com/mar1uz/cabana-test/internal/application"
	"github.com/mar1uz/cabana-test/internal/config"
	"github.com/mar1uz/cabana-test/internal/infrastructure/postgres"
	redisinfra "github.com/mar1uz/cabana-test/internal/infrastructure/redis"
	"github.com/mar1uz/cabana-test/internal/pkg/logger"
	"github.com/mar1uz/cabana-test/internal/pkg/metrics"
	"github.com/mar1uz/cabana-test/internal/worker"
)

func main() {
	// .env があれば読み込む（なければ環境変数のみ）
	_ = godotenv.Load()

	cfg := config.Load()

	logger.Set(logger.NewLogger(cfg.Server.Env))
	defer logger.Sync()

	m := metrics.Init()

	// DB接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// Redis接続（無効時はロックとキャッシュなしで動作する）
	var lockManager redisinfra.LockManagerInterface
	var calendarCache application.CalendarCache
	if cfg.Redis.Enabled {
		redisClient := redisinfra.NewClient(&cfg.Redis)
		if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
			logger.Fatal("Redis接続に失敗しました", zap.Error(err))
		}
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		calendarCache = redisinfra.NewCalendarCache(redisClient)
	} else {
		logger.Warn("Redisが無効です。分散ロックとカレンダーキャッシュなしで起動します")
	}

	// リポジトリとサービス
	txManager := postgres.NewTxManager(db)
	reservationRepo := postgres.NewReservationRepository(db)

	reservationService := application.NewReservationService(txManager, reservationRepo, lockManager, calendarCache)
	availabilityService := application.NewAvailabilityService(reservationRepo, calendarCache)

	// ハンドラー
	reservationHandler := handler.NewReservationHandler(reservationService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	adminHandler := handler.NewAdminHandler(reservationService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/availability/check", availabilityHandler.Check)
	v1.GET("/booked-dates", availabilityHandler.BookedDates)

	v1.POST("/reservations", reservationHandler.Create)
	v1.GET("/reservations", reservationHandler.List)
	v1.GET("/reservations/:id", reservationHandler.GetByID)
	v1.POST("/reservations/:id/confirm", reservationHandler.Confirm)
	v1.POST("/reservations/:id/cancel", reservationHandler.Cancel)

	admin := v1.Group("/admin")
	admin.GET("/reservations", adminHandler.ListReservations)
	admin.PATCH("/reservations/:id", adminHandler.UpdateStatus)

	// 放置された保留中予約のクリーナー
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var cleaner *worker.StalePendingCleaner
	if cfg.Cleaner.Enabled {
		cleaner = worker.NewStalePendingCleaner(
			reservationService,
			cfg.Cleaner.Interval,
			cfg.Cleaner.MaxPendingAge,
		)
		go cleaner.Start(workerCtx)
	}

	// サーバー起動
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	logger.Info("サーバーを起動しました",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
	)

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	if cleaner != nil {
		workerCancel()
		cleaner.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
