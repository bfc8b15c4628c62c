package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testRateLimiterConfig はテスト用の小さなバースト設定を返す。
func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0), // 1 req/sec
		GeneralBurst:    3,
		CreateRate:      rate.Limit(1.0),
		CreateBurst:     2,
		CleanupInterval: time.Hour,
	}
}

// TestRateLimiter_General_AllowsWithinBurst はバースト内のリクエストが許可されることを検証する。
func TestRateLimiter_General_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/timers", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
		}
	}
}

// TestRateLimiter_General_RejectsOverBurst はバースト超過時に429が返ることを検証する。
func TestRateLimiter_General_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastStatus int
	var lastBody []byte
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/timers", nil)
		req.RemoteAddr = "10.0.0.2:50000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		lastStatus = w.Result().StatusCode
		lastBody = w.Body.Bytes()
	}

	if lastStatus != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", lastStatus, http.StatusTooManyRequests)
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(lastBody, &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q, want %q", body.Code, "RATE_LIMIT_EXCEEDED")
	}
}

// TestRateLimiter_General_SeparatesClients はクライアントIPごとに独立して制限されることを検証する。
func TestRateLimiter_General_SeparatesClients(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 1台目のクライアントでバーストを使い切る
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/timers", nil)
		req.RemoteAddr = "10.0.0.3:50000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	// 別クライアントは影響を受けない
	req := httptest.NewRequest(http.MethodGet, "/api/timers", nil)
	req.RemoteAddr = "10.0.0.4:50000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

// TestRateLimiter_Creation_IndependentFromGeneral は作成系の制限がAPI全般と独立であることを検証する。
func TestRateLimiter_Creation_IndependentFromGeneral(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	createHandler := rl.CreationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	generalHandler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 作成系のバースト（2）を使い切る
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/timers", nil)
		req.RemoteAddr = "10.0.0.5:50000"
		w := httptest.NewRecorder()
		createHandler.ServeHTTP(w, req)

		if i < 2 && w.Result().StatusCode != http.StatusCreated {
			t.Errorf("create %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusCreated)
		}
		if i == 2 && w.Result().StatusCode != http.StatusTooManyRequests {
			t.Errorf("create %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusTooManyRequests)
		}
	}

	// API全般の制限は消費されていない
	req := httptest.NewRequest(http.MethodGet, "/api/timers", nil)
	req.RemoteAddr = "10.0.0.5:50000"
	w := httptest.NewRecorder()
	generalHandler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("general after create exhausted: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

// TestClientKey_StripsPort はRemoteAddrからポートが除去されることを検証する。
func TestClientKey_StripsPort(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.168.1.10:54321", "192.168.1.10"},
		{"[::1]:8080", "::1"},
		{"no-port-value", "no-port-value"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr

		if got := clientKey(req); got != tt.want {
			t.Errorf("clientKey(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
