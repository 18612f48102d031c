package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATA_STORE", "memory")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAKAO_CLIENT_ID", "")
	t.Setenv("KAKAO_CLIENT_SECRET", "")
	t.Setenv("KAKAO_REDIRECT_URL", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.KakaoAPIURL != "https://kapi.kakao.com" {
		t.Fatalf("unexpected Kakao API URL %q", cfg.KakaoAPIURL)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Fatalf("unexpected provider timeout %v", cfg.ProviderTimeout)
	}
	if !cfg.UseInMemoryStore() {
		t.Fatal("expected in-memory store by default")
	}
	if cfg.CodeFlowEnabled() {
		t.Fatal("expected code flow disabled without client id")
	}
}

func TestLoadRequiresDatabaseURLForPostgres(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATA_STORE", "postgres")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when postgres store has no DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRequiresSecretAndRedirectWithClientID(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("KAKAO_CLIENT_ID", "client-id")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "KAKAO_CLIENT_SECRET") {
		t.Fatalf("expected missing secret error, got %v", err)
	}

	t.Setenv("KAKAO_CLIENT_SECRET", "secret")
	_, err = Load()
	if err == nil || !strings.Contains(err.Error(), "KAKAO_REDIRECT_URL") {
		t.Fatalf("expected missing redirect error, got %v", err)
	}

	t.Setenv("KAKAO_REDIRECT_URL", "http://localhost:8080/api/auth/kakao/callback")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if !cfg.CodeFlowEnabled() {
		t.Fatal("expected code flow enabled")
	}
}

func TestLoadRejectsInvalidPortAndTimeout(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid port")
	}

	setBaseEnv(t)
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
}
