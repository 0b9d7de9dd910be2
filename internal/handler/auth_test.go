package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/revature/expense-manager/internal/logger"
	"github.com/revature/expense-manager/internal/middleware"
)

func (env *testEnv) do(t *testing.T, h echo.HandlerFunc, method, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/auth", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	if err := h(env.e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func jwtCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func TestLogin_Success(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, env.auth.Login, http.MethodPost, `{"username":"manager1","password":"password123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	m := decode(t, rec)
	user := m["user"].(map[string]any)
	if m["success"] != true || user["username"] != "manager1" || user["role"] != "Manager" || user["id"] != float64(1) {
		t.Fatalf("body = %v", m)
	}
	if _, ok := user["password"]; ok {
		t.Fatal("password leaked in login response")
	}

	ck := jwtCookie(rec)
	if ck == nil || ck.Value == "" {
		t.Fatal("jwt cookie not set")
	}
	if !ck.HttpOnly || ck.MaxAge != 3600 || ck.SameSite != http.SameSiteLaxMode || ck.Path != "/" {
		t.Fatalf("cookie = %+v", ck)
	}

	status := env.do(t, env.auth.Status, http.MethodGet, "", ck)
	if m := decode(t, status); m["authenticated"] != true {
		t.Fatalf("status body = %v", m)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := newEnv(t)
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr string
	}{
		{"employee", `{"username":"employee1","password":"password123"}`, http.StatusUnauthorized, "Invalid credentials or user is not a manager"},
		{"wrong password", `{"username":"manager1","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials or user is not a manager"},
		{"unknown user", `{"username":"ghost","password":"x"}`, http.StatusUnauthorized, "Invalid credentials or user is not a manager"},
		{"missing password", `{"username":"manager1"}`, http.StatusBadRequest, "Username and password are required"},
		{"empty body", ``, http.StatusBadRequest, "Username and password are required"},
		{"malformed", `{"username":`, http.StatusBadRequest, "Invalid request format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, env.auth.Login, http.MethodPost, tt.body, nil)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
			if m := decode(t, rec); m["error"] != tt.wantErr || m["success"] != false {
				t.Fatalf("body = %v", m)
			}
			if jwtCookie(rec) != nil {
				t.Fatal("cookie set on failed login")
			}
		})
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	env := newEnv(t)
	env.store.Err = errors.New("db down")

	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"manager1","password":"password123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(logger.WithContext(req.Context(), zerolog.New(&buf)))
	rec := httptest.NewRecorder()
	if err := env.auth.Login(env.e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if m := decode(t, rec); m["error"] != "Login failed" || strings.Contains(rec.Body.String(), "db down") {
		t.Fatalf("body = %s", rec.Body)
	}
	if !strings.Contains(buf.String(), `"error":"db down"`) || !strings.Contains(buf.String(), "login failed") {
		t.Fatalf("request logger got %q", buf.String())
	}
}

func TestLogout(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, env.auth.Logout, http.MethodPost, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if m := decode(t, rec); m["message"] != "Logged out successfully" {
		t.Fatalf("body = %v", m)
	}
	ck := jwtCookie(rec)
	if ck == nil || ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", ck)
	}
}

func TestStatus(t *testing.T) {
	env := newEnv(t)
	tests := []struct {
		name   string
		cookie *http.Cookie
		want   bool
	}{
		{"no cookie", nil, false},
		{"employee", env.cookieFor(t, 2), false},
		{"manager", env.cookieFor(t, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decode(t, env.do(t, env.auth.Status, http.MethodGet, "", tt.cookie))
			if m["authenticated"] != tt.want {
				t.Fatalf("body = %v", m)
			}
			if tt.want && m["user"].(map[string]any)["username"] != "manager1" {
				t.Fatalf("user = %v", m["user"])
			}
		})
	}
}
