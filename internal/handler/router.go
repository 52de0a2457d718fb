package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TayyabSohail/cloud-task-backend/internal/metrics"
	"github.com/TayyabSohail/cloud-task-backend/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MaxBodySize       int64
	HTTPMetrics       middleware.HTTPMetrics // nil可
	Gatherer          prometheus.Gatherer    // nil可（/metricsを公開しない）

	// サービス
	AccountService AccountServiceInterface
	TodoService    TodoServiceInterface
	Files          FileOpener
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → MaxBytes
//
// レート制限はAPIルートのグループにのみ適用し、/healthと/metricsは対象外とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	if deps.MaxBodySize > 0 {
		r.Use(middleware.NewMaxBytesMiddleware(deps.MaxBodySize))
	}

	accountHandler := NewAccountHandler(deps.AccountService)
	todoHandler := NewTodoHandler(deps.TodoService)
	uploadHandler := NewUploadHandler(deps.Files)

	// --- APIルート（レート制限対象） ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// アカウント
		r.Post("/signup", accountHandler.Signup)
		r.Post("/login", accountHandler.Login)

		// Todo管理
		// GET /todos/{id} のidはユーザーID、PUT/DELETEのidはTodo IDを指す。
		r.Route("/todos", func(r chi.Router) {
			if deps.RateLimiter != nil {
				// アップロードを伴う操作には専用のレート制限を重ねる
				r.With(deps.RateLimiter.UploadMiddleware()).Post("/", todoHandler.AddTodo)
				r.With(deps.RateLimiter.UploadMiddleware()).Put("/{id}", todoHandler.UpdateTodo)
			} else {
				r.Post("/", todoHandler.AddTodo)
				r.Put("/{id}", todoHandler.UpdateTodo)
			}
			r.Get("/{id}", todoHandler.ListTodos)
			r.Delete("/{id}", todoHandler.DeleteTodo)
		})

		// 保存済みファイル配信
		r.Get("/uploads/{filename}", uploadHandler.ServeFile)
	})

	// --- 運用ルート ---
	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}

// newHealthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
