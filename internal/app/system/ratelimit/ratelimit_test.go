package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func TestLimiter_WindowResets(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request in window should be limited")
	}
	if !l.Allow("b") {
		t.Error("keys are independent")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("a") {
		t.Error("request after window should pass")
	}
	if got := l.Remaining("a"); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	h := Middleware(l, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/church/groups", nil)
		req.RemoteAddr = ip + ":40000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	if rec := call("203.0.113.7"); rec.Code != http.StatusNoContent {
		t.Fatalf("first = %d", rec.Code)
	}
	rec := call("203.0.113.7")
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Errorf("second = %d retry-after %q", rec.Code, rec.Header().Get("Retry-After"))
	}
	if rec := call("198.51.100.2"); rec.Code != http.StatusNoContent {
		t.Errorf("other ip = %d", rec.Code)
	}
}

func TestMiddleware_RotatingForwardedForIsStillLimited(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	h := Middleware(l, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/church/groups", nil)
		req.RemoteAddr = "198.51.100.20:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.1.0.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want 204 then 429s", codes)
	}
	l.mu.Lock()
	keys := len(l.windows)
	l.mu.Unlock()
	if keys != 1 {
		t.Errorf("limiter tracks %d keys, want 1", keys)
	}
}

func TestMiddleware_BehindTrustedProxy(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	h := middleware.RealIP(Middleware(l, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	call := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	if call("203.0.113.1") != http.StatusNoContent || call("203.0.113.2") != http.StatusNoContent {
		t.Error("distinct clients behind the proxy should each get their own window")
	}
	if got := call("203.0.113.1"); got != http.StatusTooManyRequests {
		t.Errorf("repeat client = %d, want 429", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded ignored", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8"}, "9.9.9.9:1", "9.9.9.9"},
		{"real ip ignored", map[string]string{"X-Real-IP": "4.3.2.1"}, "9.9.9.9:1", "9.9.9.9"},
		{"remote with port", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
