package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"API_ADDR", "DQA_STORE", "DQA_FEED_URL", "DQA_VERIFY_RATE_PER_SEC", "DQA_DIGEST_TO", "MINIO_USE_SSL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Addr != ":8787" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Store != "sqlite" {
		t.Fatalf("expected sqlite store, got %q", cfg.Store)
	}
	if cfg.FeedURL != "" {
		t.Fatalf("expected feed disabled by default, got %q", cfg.FeedURL)
	}
	if cfg.VerifyRatePerSec != 1 || cfg.VerifyBurst != 2 || cfg.VerifyTimeout != 45*time.Second {
		t.Fatalf("unexpected verify defaults: %+v", cfg)
	}
	if cfg.DigestTo != nil {
		t.Fatalf("expected no digest recipients, got %v", cfg.DigestTo)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DQA_STORE", "Redis")
	t.Setenv("DQA_VERIFY_RATE_PER_SEC", "0.5")
	t.Setenv("DQA_VERIFY_BURST", "not-a-number")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("DQA_DIGEST_TO", " qa@example.com, ,lead@example.com ")

	cfg := Load()
	if cfg.Store != "redis" {
		t.Fatalf("expected lowercased store, got %q", cfg.Store)
	}
	if cfg.VerifyRatePerSec != 0.5 {
		t.Fatalf("expected rate 0.5, got %v", cfg.VerifyRatePerSec)
	}
	if cfg.VerifyBurst != 2 {
		t.Fatalf("expected invalid burst to fall back, got %d", cfg.VerifyBurst)
	}
	if !cfg.Minio.UseSSL {
		t.Fatal("expected MINIO_USE_SSL to parse")
	}
	if len(cfg.DigestTo) != 2 || cfg.DigestTo[0] != "qa@example.com" || cfg.DigestTo[1] != "lead@example.com" {
		t.Fatalf("unexpected recipients: %v", cfg.DigestTo)
	}
}
