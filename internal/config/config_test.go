package config

import (
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "ibuki" || cfg.Port != 2333 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ResumeDefaultTimeout.Seconds() != 60 {
		t.Fatalf("expected 60s resume timeout, got %v", cfg.ResumeDefaultTimeout)
	}
}

func TestLoadHonoursEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("REST_TOKEN", "super-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9999 || cfg.RestToken != "super-secret" {
		t.Fatalf("expected env overrides to apply, got %+v", cfg)
	}
}
