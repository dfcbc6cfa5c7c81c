package config

import (
	"testing"
	"time"
)

func TestLoadCacheConfig_Defaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Error("cache should default to enabled")
	}
	if cfg.TTL != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", cfg.TTL)
	}
	if cfg.Prefix != "weeks" {
		t.Errorf("Prefix = %q", cfg.Prefix)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Errorf("MaxBodyBytes = %d", cfg.MaxBodyBytes)
	}
}

func TestLoadCacheConfig_Overrides(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "5s")
	t.Setenv("CACHE_PREFIX", "wk")
	cfg := LoadCacheConfig()
	if cfg.Enabled {
		t.Error("CACHE_ENABLED=false ignored")
	}
	if cfg.TTL != 5*time.Second || cfg.Prefix != "wk" {
		t.Errorf("overrides ignored: %+v", cfg)
	}
}

func TestLoadRateLimitConfig_ClampsNonsense(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "-3")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("Capacity = %d, want clamp to 1", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Errorf("RefillTokens = %d, want clamp to 1", cfg.RefillTokens)
	}
	// TTL shorter than the refill cadence would evict live buckets.
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Errorf("TTL = %v, want at least %v", cfg.TTL, 5*cfg.RefillInterval)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "")
	if !envBool("FLAG", true) || envBool("FLAG", false) {
		t.Error("empty value must fall back to the default")
	}
	t.Setenv("FLAG", "yes")
	if !envBool("FLAG", false) {
		t.Error("yes not recognized")
	}
	t.Setenv("FLAG", "off")
	if envBool("FLAG", true) {
		t.Error("off not recognized")
	}
	t.Setenv("FLAG", "banana")
	if !envBool("FLAG", true) {
		t.Error("unparseable value must fall back to the default")
	}
}
