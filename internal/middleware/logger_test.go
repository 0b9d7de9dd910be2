package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/logger"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.Use(echomw.RequestID(), RequestLogger(log))
	e.GET("/api/health", func(c echo.Context) error {
		l := logger.FromContext(c.Request().Context())
		l.Info().Msg("inside handler")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2: %s", len(lines), buf.String())
	}
	for _, l := range lines {
		var entry map[string]any
		if err := json.Unmarshal(l, &entry); err != nil {
			t.Fatalf("decode %s: %v", l, err)
		}
		if entry["request_id"] != "req-42" {
			t.Fatalf("entry without request id: %v", entry)
		}
	}
	var last map[string]any
	_ = json.Unmarshal(lines[1], &last)
	if last["status"] != float64(http.StatusNoContent) || last["path"] != "/api/health" {
		t.Fatalf("request line = %v", last)
	}
}
