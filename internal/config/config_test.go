package config

import (
	"testing"
	"time"
)

func TestLoadCacheConfig_Defaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Error("cache should be enabled by default")
	}
	if !cfg.Methods["GET"] || len(cfg.Methods) != 1 {
		t.Errorf("Methods = %v, want only GET", cfg.Methods)
	}
	if cfg.TTL != 60*time.Second {
		t.Errorf("TTL = %s, want 60s", cfg.TTL)
	}
	if cfg.Prefix != "expcache" {
		t.Errorf("Prefix = %q, want expcache", cfg.Prefix)
	}
}

func TestLoadCacheConfig_Env(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "off")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "5m")

	cfg := LoadCacheConfig()
	if cfg.Enabled {
		t.Error("CACHE_ENABLED=off should disable the cache")
	}
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Errorf("Methods = %v, want GET and HEAD", cfg.Methods)
	}
	if cfg.TTL != 5*time.Minute {
		t.Errorf("TTL = %s, want 5m", cfg.TTL)
	}
}

func TestNormalizeRateLimit(t *testing.T) {
	got := normalizeRateLimit(RateLimitConfig{Capacity: 0, RefillTokens: -1, RefillInterval: 0, TTL: time.Second})
	if got.Capacity != 1 || got.RefillTokens != 1 {
		t.Errorf("Capacity/RefillTokens = %d/%d, want 1/1", got.Capacity, got.RefillTokens)
	}
	if got.RefillInterval != time.Second {
		t.Errorf("RefillInterval = %s, want 1s", got.RefillInterval)
	}
	if got.TTL != 5*time.Second {
		t.Errorf("TTL = %s, want 5s", got.TTL)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "abc")
	if got := envInt("X_INT", 7); got != 7 {
		t.Errorf("envInt(bad) = %d, want default 7", got)
	}
	t.Setenv("X_BOOL", "maybe")
	if got := envBool("X_BOOL", true); !got {
		t.Error("envBool(unknown) should fall back to default")
	}
	t.Setenv("X_DUR", "250ms")
	if got := envDur("X_DUR", time.Second); got != 250*time.Millisecond {
		t.Errorf("envDur = %s, want 250ms", got)
	}
}

func TestRedisOptions_HostPortWins(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_DB", "3")

	opts := RedisOptions()
	if opts.Addr != "redis:6379" {
		t.Errorf("Addr = %q, want redis:6379", opts.Addr)
	}
	if opts.DB != 3 {
		t.Errorf("DB = %d, want 3", opts.DB)
	}
	if opts.TLSConfig != nil {
		t.Error("TLS should be off unless REDIS_TLS is set")
	}
}

func TestAMQPURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	if got := amqpURL(); got != "amqp://u:p@broker:5672/" {
		t.Errorf("amqpURL() = %q", got)
	}
}
