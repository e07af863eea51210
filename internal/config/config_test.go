package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://api.brain-map.org/api/v2/" {
		t.Fatalf("unexpected base_url %q", cfg.BaseURL)
	}
	if cfg.APIVersion != "v1" {
		t.Fatalf("unexpected api_version %q", cfg.APIVersion)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
	if !cfg.Settings.LoadSmallDataInMemory || cfg.Settings.UseMultithreading {
		t.Fatalf("unexpected settings %+v", cfg.Settings)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AMBA_BASE_URL", " http://localhost:9999/api/v2 ")
	t.Setenv("AMBA_API_VERSION", "V1")
	t.Setenv("AMBA_HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("AMBA_USE_MULTITHREADING", "true")
	t.Setenv("AMBA_STORAGE_TYPE", "BBolt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999/api/v2" {
		t.Fatalf("unexpected base_url %q", cfg.BaseURL)
	}
	if cfg.APIVersion != "v1" {
		t.Fatalf("unexpected api_version %q", cfg.APIVersion)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
	if !cfg.Settings.UseMultithreading {
		t.Fatalf("expected use_multithreading from env")
	}
	if cfg.StorageType != "bbolt" {
		t.Fatalf("unexpected storage_type %q", cfg.StorageType)
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("AMBA_HTTP_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
