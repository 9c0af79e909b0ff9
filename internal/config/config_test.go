package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_EMAILS", "boss@example.com,Owner@Example.com")
	t.Setenv("AUTO_APPROVE", "true")
	t.Setenv("OCR_TIMEOUT", "30s")

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("expected JWT secret from env, got %q", cfg.JWTSecret)
	}
	if !cfg.AutoApprove {
		t.Error("expected AUTO_APPROVE to be true")
	}
	if cfg.OCRTimeout != 30*time.Second {
		t.Errorf("expected OCR timeout 30s, got %s", cfg.OCRTimeout)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("expected default sqlite driver, got %s", cfg.DatabaseDriver)
	}
	if cfg.LeaderboardLimit != 25 {
		t.Errorf("expected default leaderboard limit 25, got %d", cfg.LeaderboardLimit)
	}
	if !cfg.IsAdminEmail("owner@example.com") {
		t.Error("expected case-insensitive admin email match")
	}
	if cfg.IsAdminEmail("someone@example.com") {
		t.Error("did not expect unknown email to be admin")
	}
}
