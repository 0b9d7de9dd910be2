package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/config"
)

func TestLoginKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")

	if got, want := loginKey("rl", c), "rl:10.0.0.7:POST /api/auth/login"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}

func TestParseBucketResult(t *testing.T) {
	tests := []struct {
		name  string
		reply interface{}
		want  bucketResult
		ok    bool
	}{
		{"allowed", []interface{}{int64(1), int64(4), int64(0)}, bucketResult{allowed: true, remaining: 4}, true},
		{"blocked", []interface{}{int64(0), int64(0), int64(1500)}, bucketResult{retry: 1500 * time.Millisecond}, true},
		{"short", []interface{}{int64(1)}, bucketResult{}, false},
		{"wrong type", []interface{}{"1", int64(0), int64(0)}, bucketResult{}, false},
		{"not a list", "OK", bucketResult{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseBucketResult(tt.reply)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("parseBucketResult = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNewTokenBucket_NoRedisPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, zerolog.Nop())
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), rec)
	for i := 0; i < 3; i++ {
		if err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
