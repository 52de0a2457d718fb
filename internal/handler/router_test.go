package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TayyabSohail/cloud-task-backend/internal/metrics"
	"github.com/TayyabSohail/cloud-task-backend/internal/middleware"
	"github.com/TayyabSohail/cloud-task-backend/internal/model"
	"github.com/TayyabSohail/cloud-task-backend/internal/todo"
)

// mockHealthChecker はHealthCheckerのテスト用実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

func newTestRouterDeps(t *testing.T) *RouterDeps {
	t.Helper()

	return &RouterDeps{
		HealthChecker:     &mockHealthChecker{},
		CORSAllowedOrigin: "http://localhost:3000",
		MaxBodySize:       1 << 20,

		AccountService: &mockAccountService{
			signupFn: func(ctx context.Context, name, company, email, password string) error {
				return nil
			},
			loginFn: func(ctx context.Context, email, password string) (*model.User, error) {
				return &model.User{ID: 1, Name: "test", Email: email}, nil
			},
		},
		TodoService: &mockTodoService{
			listTodosFn: func(ctx context.Context, userID int64) ([]*model.Todo, error) {
				return []*model.Todo{{ID: 1, UserID: userID, Text: "test"}}, nil
			},
			addTodoFn: func(ctx context.Context, userID int64, text string, upload *todo.Upload) (*model.Todo, error) {
				return &model.Todo{ID: 2, UserID: userID, Text: text}, nil
			},
			updateTodoFn: func(ctx context.Context, todoID int64, text string, upload *todo.Upload) error {
				return nil
			},
			deleteTodoFn: func(ctx context.Context, todoID int64) error {
				return nil
			},
		},
		Files: newTestStore(t),
	}
}

func TestNewRouter_RoutesAreWired(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"signup", http.MethodPost, "/signup", `{"name":"a","company_name":"b","email":"a@b.com","password":"pw"}`, http.StatusCreated},
		{"login", http.MethodPost, "/login", `{"email":"a@b.com","password":"pw"}`, http.StatusOK},
		{"list todos", http.MethodGet, "/todos/1", "", http.StatusOK},
		{"add todo", http.MethodPost, "/todos", `{"user_id":1,"text":"x"}`, http.StatusCreated},
		{"update todo", http.MethodPut, "/todos/1", `{"text":"y"}`, http.StatusOK},
		{"delete todo", http.MethodDelete, "/todos/1", "", http.StatusOK},
		{"serve missing upload", http.MethodGet, "/uploads/nope.pdf", "", http.StatusNotFound},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d", tt.method, tt.target, w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestNewRouter_HealthCheckFailure_Returns503(t *testing.T) {
	deps := newTestRouterDeps(t)
	deps.HealthChecker = &mockHealthChecker{err: errors.New("connection refused")}

	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusServiceUnavailable)
	}
}

func TestNewRouter_SetsCORSAndSecurityHeaders(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/todos/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	headers := w.Result().Header
	if got := headers.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
	}
	if got := headers.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestNewRouter_OptionsPreflightReturns204(t *testing.T) {
	router := NewRouter(newTestRouterDeps(t))

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

// TestNewRouter_BodyOverLimit_Returns413 はボディ上限超過が413になることを検証する。
func TestNewRouter_BodyOverLimit_Returns413(t *testing.T) {
	deps := newTestRouterDeps(t)
	deps.MaxBodySize = 64

	router := NewRouter(deps)

	body := `{"user_id":1,"text":"` + strings.Repeat("a", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusRequestEntityTooLarge)
	}

	var respBody apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if respBody.Code != model.ErrCodeRequestTooLarge {
		t.Errorf("code = %q, want %q", respBody.Code, model.ErrCodeRequestTooLarge)
	}
}

// TestNewRouter_UploadRateLimit はアップロード操作に専用のレート制限が効くことを検証する。
func TestNewRouter_UploadRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    200,
		UploadRate:      1,
		UploadBurst:     1,
		CleanupInterval: time.Hour, // テスト中にクリーンアップが走らないように
	})
	defer rl.Stop()

	deps := newTestRouterDeps(t)
	deps.RateLimiter = rl

	router := NewRouter(deps)

	// 1回目のPOST /todosは通る
	req1 := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(`{"user_id":1,"text":"a"}`))
	req1.Header.Set("Content-Type", "application/json")
	req1.RemoteAddr = "203.0.113.99:40000"
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, req1)

	if w1.Result().StatusCode != http.StatusCreated {
		t.Fatalf("first request: status = %d, want %d", w1.Result().StatusCode, http.StatusCreated)
	}

	// 2回目は429
	req2 := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(`{"user_id":1,"text":"b"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.RemoteAddr = "203.0.113.99:40000"
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)

	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
	}

	// アップロード制限に引っかかってもGETは通る
	req3 := httptest.NewRequest(http.MethodGet, "/todos/1", nil)
	req3.RemoteAddr = "203.0.113.99:40000"
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req3)

	if w3.Result().StatusCode != http.StatusOK {
		t.Errorf("GET after upload limit: status = %d, want %d", w3.Result().StatusCode, http.StatusOK)
	}
}

// TestNewRouter_MetricsEndpoint は/metricsエンドポイントがPrometheus形式で公開されることを検証する。
func TestNewRouter_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	deps := newTestRouterDeps(t)
	deps.HTTPMetrics = collector
	deps.Gatherer = registry

	router := NewRouter(deps)

	// APIリクエストを1回発行してメトリクスを記録させる
	req := httptest.NewRequest(http.MethodGet, "/todos/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// /metricsを取得
	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsW := httptest.NewRecorder()
	router.ServeHTTP(metricsW, metricsReq)

	resp := metricsW.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "taskbackend_http_status_total") {
		t.Error("metrics output should contain taskbackend_http_status_total")
	}
}
