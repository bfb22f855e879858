package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/roofline_test")
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")
}

func TestLoadParsesDurationsAndInts(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("ASYNQ_CONCURRENCY", "4")
	t.Setenv("DELETION_REQUEST_RETENTION", "720h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("SMTPPort = %d, want 2525", cfg.SMTPPort)
	}
	if cfg.AsynqConcurrency != 4 {
		t.Errorf("AsynqConcurrency = %d, want 4", cfg.AsynqConcurrency)
	}
	if cfg.DeletionRequestRetention != 720*time.Hour {
		t.Errorf("DeletionRequestRetention = %v, want 720h", cfg.DeletionRequestRetention)
	}
}

func TestLoadRejectsMalformedRetention(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DELETION_REQUEST_RETENTION", "2160")

	_, err := Load()
	if err == nil {
		t.Fatal("Load accepted a retention value without a unit")
	}
	if !strings.Contains(err.Error(), "DELETION_REQUEST_RETENTION") {
		t.Errorf("error %q does not name the variable", err)
	}
}

func TestLoadRejectsMalformedSMTPPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_PORT", "smtp")

	_, err := Load()
	if err == nil {
		t.Fatal("Load accepted a non-numeric SMTP port")
	}
	if !strings.Contains(err.Error(), "SMTP_PORT") {
		t.Errorf("error %q does not name the variable", err)
	}
}
