package main

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("TRUSTED_PROXIES", "")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.TrustedProxies != nil {
		t.Errorf("no proxy should be trusted by default, got %v", cfg.TrustedProxies)
	}
	if cfg.Guard != DefaultGuardConfig() {
		t.Errorf("expected default guard config, got %+v", cfg.Guard)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("DB_PATH", "env.db")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MAX_CONNS_PER_IP", "2")
	t.Setenv("BAN_DURATION", "1m")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg, err := LoadConfig([]string{"-addr", ":7000", "-max-conns", "50"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("flag should win over env, got %q", cfg.Addr)
	}
	if cfg.DBPath != "env.db" {
		t.Errorf("expected env db path, got %q", cfg.DBPath)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("origins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.Guard.MaxConnsPerIP != 2 || cfg.Guard.MaxTotalConns != 50 {
		t.Errorf("unexpected guard limits %+v", cfg.Guard)
	}
	if cfg.Guard.BanDuration != time.Minute {
		t.Errorf("expected 1m ban, got %v", cfg.Guard.BanDuration)
	}
	if want := []string{"10.0.0.0/8", "192.168.1.1"}; !reflect.DeepEqual(cfg.TrustedProxies, want) {
		t.Errorf("trusted proxies = %v, want %v", cfg.TrustedProxies, want)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("expected secret from env, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfigBadInput(t *testing.T) {
	t.Setenv("MAX_CONNS_PER_IP", "lots")
	t.Setenv("READ_TIMEOUT", "soon")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Guard.MaxConnsPerIP != DefaultGuardConfig().MaxConnsPerIP {
		t.Errorf("bad int should fall back, got %d", cfg.Guard.MaxConnsPerIP)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("bad duration should fall back, got %v", cfg.ReadTimeout)
	}

	if _, err := LoadConfig([]string{"-no-such-flag"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(" a, ,b ,"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v", got)
	}
	if got := splitList(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
