// Package app はアプリケーションの起動とワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/timerman/internal/category"
	"github.com/hitoshi/timerman/internal/config"
	"github.com/hitoshi/timerman/internal/database"
	"github.com/hitoshi/timerman/internal/engine"
	"github.com/hitoshi/timerman/internal/handler"
	"github.com/hitoshi/timerman/internal/history"
	"github.com/hitoshi/timerman/internal/logger"
	"github.com/hitoshi/timerman/internal/metrics"
	"github.com/hitoshi/timerman/internal/middleware"
	"github.com/hitoshi/timerman/internal/model"
	"github.com/hitoshi/timerman/internal/repository"
	"github.com/hitoshi/timerman/internal/timer"
	"github.com/hitoshi/timerman/internal/worker/persist"
	"github.com/hitoshi/timerman/internal/worker/tick"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、保存済みの状態でStoreを初期化し、tickスケジューラ・
// 保存ワーカー・HTTPサーバーを起動する。SIGINTまたはSIGTERMシグナルを
// 受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリとメトリクスの初期化
	stateRepo := repository.NewPostgresStateRepo(db)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. Storeの初期化と保存済み状態の復元
	store := engine.NewStore(slog.Default())
	saver := persist.NewSaver(stateRepo, slog.Default(), collector, cfg.SaveTimeout)

	hydrateStore(store, saver, stateRepo)

	// 4. 状態変更の保存通知を購読
	store.Subscribe(saver.Notify)

	// 5. ドメインサービスの初期化
	timerService := timer.NewService(store)
	categoryService := category.NewService(store)
	historyService := history.NewService(store)

	// 6. ルーターの構築
	rateLimiterCfg := middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:    cfg.RateLimitGeneral,
		CreateRate:      rate.Limit(float64(cfg.RateLimitCreate) / 60.0),
		CreateBurst:     cfg.RateLimitCreate,
		CleanupInterval: 5 * time.Minute,
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Gatherer:          registry,
		TimerService:      timerService,
		CategoryService:   categoryService,
		HistoryService:    historyService,
	})

	// 7. バックグラウンドワーカーの起動
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	saverDone := make(chan struct{})
	go func() {
		defer close(saverDone)
		saver.Run(ctx)
	}()

	scheduler := tick.NewScheduler(store, slog.Default(), collector)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Start(ctx, cfg.TickInterval)
	}()

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.Duration("tick_interval", cfg.TickInterval),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// ワーカーを停止し、保存待ちの状態をフラッシュさせる
	cancel()
	<-schedulerDone
	<-saverDone

	slog.Info("API server stopped gracefully")
	return nil
}

// hydrateStore は保存済みの状態でStoreを初期化する。
// 読み込みに失敗した場合は空の状態（デフォルトカテゴリのみ）で開始し、
// 既存データを上書きしないようエラーをログに残す。カテゴリが一度も
// 保存されていない場合はデフォルトカテゴリを即時シードする。
func hydrateStore(store *engine.Store, saver *persist.Saver, repo repository.StateRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	timers, err := repo.LoadTimers(ctx)
	if err != nil {
		slog.Error("タイマーの読み込みに失敗しました。初期状態で起動します",
			slog.String("error", err.Error()),
		)
		return
	}

	categories, err := repo.LoadCategories(ctx)
	if err != nil {
		slog.Error("カテゴリの読み込みに失敗しました。初期状態で起動します",
			slog.String("error", err.Error()),
		)
		return
	}

	logs, err := repo.LoadTimerLogs(ctx)
	if err != nil {
		slog.Error("完了記録の読み込みに失敗しました。初期状態で起動します",
			slog.String("error", err.Error()),
		)
		return
	}

	if len(categories) == 0 {
		// 初回起動。デフォルトカテゴリをシードして永続化する
		categories = model.DefaultCategories()
		state := store.Hydrate(timers, categories, logs)
		saver.SaveNow(ctx, state)

		slog.Info("デフォルトカテゴリをシードしました",
			slog.Int("categories", len(categories)),
		)
		return
	}

	state := store.Hydrate(timers, categories, logs)
	slog.Info("保存済みの状態を復元しました",
		slog.Int("timers", len(state.Timers)),
		slog.Int("categories", len(state.Categories)),
		slog.Int("timer_logs", len(state.TimerLogs)),
	)
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
