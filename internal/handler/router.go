package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/timerman/internal/metrics"
	"github.com/hitoshi/timerman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス公開用
	Gatherer prometheus.Gatherer

	// ドメインサービス
	TimerService    TimerServiceInterface
	CategoryService CategoryServiceInterface
	HistoryService  HistoryServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → RecoveryMiddleware → LoggingMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// ヘルスチェックとメトリクスはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	timerHandler := NewTimerHandler(deps.TimerService)
	categoryHandler := NewCategoryHandler(deps.CategoryService)
	historyHandler := NewHistoryHandler(deps.HistoryService)

	// --- 運用ルート（レート制限の対象外） ---

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// タイマー管理
		r.Route("/api/timers", func(r chi.Router) {
			r.Get("/", timerHandler.ListTimers)
			// POST /api/timers - タイマー作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.CreationMiddleware()).Post("/", timerHandler.CreateTimer)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", timerHandler.GetTimer)
				r.Patch("/", timerHandler.UpdateTimer)
				r.Delete("/", timerHandler.DeleteTimer)

				// 状態遷移操作
				r.Post("/start", timerHandler.StartTimer)
				r.Post("/pause", timerHandler.PauseTimer)
				r.Post("/reset", timerHandler.ResetTimer)
				r.Post("/complete", timerHandler.CompleteTimer)

				// 中間アラート設定
				r.Put("/halfway-alert", timerHandler.UpdateHalfwayAlert)
			})
		})

		// カテゴリ管理
		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			// POST /api/categories - カテゴリ作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.CreationMiddleware()).Post("/", categoryHandler.CreateCategory)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", categoryHandler.UpdateCategory)
				r.Delete("/", categoryHandler.DeleteCategory)

				// 一括操作
				r.Post("/toggle", categoryHandler.ToggleExpanded)
				r.Post("/start", categoryHandler.StartCategoryTimers)
				r.Post("/pause", categoryHandler.PauseCategoryTimers)
				r.Post("/reset", categoryHandler.ResetCategoryTimers)
			})
		})

		// 完了履歴
		r.Route("/api/history", func(r chi.Router) {
			r.Get("/", historyHandler.ListHistory)
			r.Get("/export", historyHandler.ExportHistory)
		})
	})

	return r
}

// handleHealth はヘルスチェックエンドポイント。
// GET /health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
