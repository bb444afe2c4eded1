package config

import (
	"reflect"
	"testing"
)

// TestLoadDefaults は環境変数未設定時のデフォルト値を検証する。
func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATA_DB", "PUBLIC_VAPID_KEY", "PRIVATE_VAPID_KEY",
		"EXTERNAL_URL", "PUSH", "DEFAULT_SCHEDULE", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want 8080", cfg.Port)
	}
	if cfg.DataDB != "./oshirase.db" {
		t.Errorf("DataDB: got %q, want ./oshirase.db", cfg.DataDB)
	}
	if cfg.ExternalURL != "http://localhost:8080" {
		t.Errorf("ExternalURL: got %q, want http://localhost:8080", cfg.ExternalURL)
	}
	if !cfg.Push {
		t.Error("Push: got false, want true")
	}
	if cfg.DefaultSchedule != "0 9 * * *" {
		t.Errorf("DefaultSchedule: got %q, want 0 9 * * *", cfg.DefaultSchedule)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins: got %v, want 空", cfg.AllowedOrigins)
	}
}

// TestLoadOverrides は環境変数による上書きを検証する。
func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATA_DB", "/var/lib/oshirase/data.db")
	t.Setenv("PUBLIC_VAPID_KEY", "pub-key")
	t.Setenv("PRIVATE_VAPID_KEY", "priv-key")
	t.Setenv("EXTERNAL_URL", "https://oshirase.example.com")
	t.Setenv("PUSH", "false")
	t.Setenv("DEFAULT_SCHEDULE", "0 18 * * *")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port: got %q, want 3000", cfg.Port)
	}
	if cfg.DataDB != "/var/lib/oshirase/data.db" {
		t.Errorf("DataDB: got %q", cfg.DataDB)
	}
	if cfg.PublicVapidKey != "pub-key" || cfg.PrivateVapidKey != "priv-key" {
		t.Errorf("VAPID鍵: got %q / %q", cfg.PublicVapidKey, cfg.PrivateVapidKey)
	}
	if cfg.ExternalURL != "https://oshirase.example.com" {
		t.Errorf("ExternalURL: got %q", cfg.ExternalURL)
	}
	if cfg.Push {
		t.Error("Push: got true, want false")
	}
	if cfg.DefaultSchedule != "0 18 * * *" {
		t.Errorf("DefaultSchedule: got %q", cfg.DefaultSchedule)
	}
	want := []string{"https://app.example.com", "https://staging.example.com"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins: got %v, want %v", cfg.AllowedOrigins, want)
	}
}

// TestLoadExternalURLFollowsPort はEXTERNAL_URL未設定時にPORTから
// 導出されることを検証する。
func TestLoadExternalURLFollowsPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EXTERNAL_URL", "")

	cfg := Load()

	if cfg.ExternalURL != "http://localhost:9090" {
		t.Errorf("ExternalURL: got %q, want http://localhost:9090", cfg.ExternalURL)
	}
}

// TestParseBool は真偽値の解釈を検証する。
func TestParseBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"enabled", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"no", false},
		{"No", false},
	}
	for _, tt := range tests {
		if got := parseBool(tt.value); got != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
