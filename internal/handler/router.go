package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bukatsu/internal/metrics"
	"github.com/hitoshi/bukatsu/internal/middleware"
	"github.com/hitoshi/bukatsu/internal/web"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 活動レジストリ
	Registry ActivityRegistryInterface

	// ヘルスチェック
	HealthCounter ActivityCounter

	// メトリクス
	HTTPMetrics middleware.HTTPMetricsRecorder
	Gatherer    prometheus.Gatherer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → RequestIDMiddleware → LoggingMiddleware → RecoveryMiddleware
//
// RecoveryはLoggingの内側に置く。panicで中断したリクエストも
// 確定済みの500としてアクセスログとメトリクスに残る。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, deps.HTTPMetrics))
	r.Use(middleware.NewRecoveryMiddleware())

	activityHandler := NewActivityHandler(deps.Registry)
	healthHandler := NewHealthHandler(deps.HealthCounter)

	// --- フロントエンド ---

	// ルートは組み込みのトップページへリダイレクトする
	r.Get("/", web.RedirectRoot)
	r.Handle("/static/*", web.Handler())

	// --- 運用エンドポイント ---

	r.Get("/health", healthHandler.Check)
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 活動API ---
	// ミドルウェアスタック: RateLimit(General)、登録系はさらに登録専用レート制限
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", activityHandler.ListActivities)

			r.Route("/{name}", func(r chi.Router) {
				r.With(deps.RateLimiter.SignupMiddleware()).Post("/signup", activityHandler.Signup)
				r.With(deps.RateLimiter.SignupMiddleware()).Delete("/participants", activityHandler.Unregister)
			})
		})
	})

	return r
}
