package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Errorf("App.Port = %q, want 8080", cfg.App.Port)
	}
	if got := cfg.Locking.Wait(); got != 5*time.Second {
		t.Errorf("Locking.Wait() = %v, want 5s", got)
	}
	if got := cfg.Locking.Lease(); got != 30*time.Second {
		t.Errorf("Locking.Lease() = %v, want 30s", got)
	}
	if got := cfg.Locking.Retry(); got != 50*time.Millisecond {
		t.Errorf("Locking.Retry() = %v, want 50ms", got)
	}
	if cfg.Auth.AccessTokenTTLMinutes != 60 {
		t.Errorf("Auth.AccessTokenTTLMinutes = %d, want 60", cfg.Auth.AccessTokenTTLMinutes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOCK_WAIT_SECONDS", "2")
	t.Setenv("LOCK_LEASE_SECONDS", "10")
	t.Setenv("LOCK_RETRY_MILLIS", "25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Port != "9090" {
		t.Errorf("App.Port = %q, want 9090", cfg.App.Port)
	}
	if got := cfg.Locking.Wait(); got != 2*time.Second {
		t.Errorf("Locking.Wait() = %v, want 2s", got)
	}
	if got := cfg.Locking.Lease(); got != 10*time.Second {
		t.Errorf("Locking.Lease() = %v, want 10s", got)
	}
	if got := cfg.Locking.Retry(); got != 25*time.Millisecond {
		t.Errorf("Locking.Retry() = %v, want 25ms", got)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("LOCK_WAIT_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Locking.WaitSeconds != 5 {
		t.Errorf("Locking.WaitSeconds = %d, want default 5", cfg.Locking.WaitSeconds)
	}
}

func TestAppConfigAddr(t *testing.T) {
	app := AppConfig{Host: "127.0.0.1", Port: "3000"}
	if got := app.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:3000", got)
	}
}
