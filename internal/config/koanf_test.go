// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearMappedEnv unsets every mapped variable for the duration of the test.
func clearMappedEnv(t *testing.T) {
	t.Helper()
	keys := append([]string{ConfigPathEnvVar}, mappedEnvKeys()...)
	for _, key := range keys {
		if _, ok := os.LookupEnv(key); ok {
			t.Setenv(key, "")
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("unset %s: %v", key, err)
			}
		}
	}
}

func mappedEnvKeys() []string {
	keys := make([]string, 0, len(envMappings))
	for k := range envMappings {
		keys = append(keys, strings.ToUpper(k))
	}
	return keys
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearMappedEnv(t)

	cfg, err := load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Audit.RetentionDays != 90 || cfg.Alerts.RetentionDays != 30 {
		t.Errorf("unexpected retention defaults audit=%d alerts=%d", cfg.Audit.RetentionDays, cfg.Alerts.RetentionDays)
	}
	if cfg.Alerts.Rules.SuspiciousLoginWindow != 10*time.Minute {
		t.Errorf("unexpected suspicious login window %v", cfg.Alerts.Rules.SuspiciousLoginWindow)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS must be disabled by default")
	}
}

func TestLoad_File(t *testing.T) {
	clearMappedEnv(t)

	path := writeConfigFile(t, `
server:
  port: 9443
alerts:
  min_dispatch_severity: critical
  rules:
    bulk_operation_threshold: 20
channels:
  slack:
    enabled: true
    webhook_url: https://hooks.slack.com/services/T/B/X
  webhook:
    enabled: true
    url: https://siem.example.com/ingest
    headers:
      Authorization: Bearer abc
  email:
    enabled: true
    host: smtp.example.com
    from: sentinel@example.com
    to:
      - soc@example.com
      - oncall@example.com
`)

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9443 {
		t.Errorf("expected port 9443, got %d", cfg.Server.Port)
	}
	if cfg.Alerts.MinDispatchSeverity != "critical" {
		t.Errorf("unexpected severity %s", cfg.Alerts.MinDispatchSeverity)
	}
	if cfg.Alerts.Rules.BulkOperationThreshold != 20 || cfg.Alerts.Rules.BulkOperationLimit != 50 {
		t.Errorf("file must override only the set fields: %+v", cfg.Alerts.Rules)
	}
	if cfg.Channels.Webhook.Headers["Authorization"] != "Bearer abc" {
		t.Errorf("unexpected webhook headers %v", cfg.Channels.Webhook.Headers)
	}
	if len(cfg.Channels.Email.To) != 2 || cfg.Channels.Email.Port != 587 {
		t.Errorf("unexpected email config %+v", cfg.Channels.Email)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearMappedEnv(t)
	path := writeConfigFile(t, "server:\n  port: 9443\n")

	t.Setenv("HTTP_PORT", "7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALERT_CHANNEL_TIMEOUT", "3s")
	t.Setenv("SMTP_ENABLED", "true")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_FROM", "a@example.com")
	t.Setenv("SMTP_TO", "x@example.com, y@example.com")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_URL", "nats://bus:4222")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("env must override file: port %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected level %s", cfg.Logging.Level)
	}
	if cfg.Alerts.ChannelTimeout != 3*time.Second {
		t.Errorf("unexpected channel timeout %v", cfg.Alerts.ChannelTimeout)
	}
	if got := strings.Join(cfg.Channels.Email.To, "|"); got != "x@example.com|y@example.com" {
		t.Errorf("unexpected recipients %q", got)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.HasWildcardCORS() {
		t.Errorf("unexpected CORS origins %v", cfg.Security.CORSOrigins)
	}
	if !cfg.NATS.Enabled || cfg.NATS.URL != "nats://bus:4222" {
		t.Errorf("unexpected NATS config %+v", cfg.NATS)
	}
}

func TestLoad_InvalidFails(t *testing.T) {
	clearMappedEnv(t)
	t.Setenv("ALERT_MIN_DISPATCH_SEVERITY", "extreme")

	if _, err := load(""); err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("expected validation failure, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearMappedEnv(t)
	if _, err := load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit file")
	}
}

func TestFindConfigFile_EnvOverride(t *testing.T) {
	clearMappedEnv(t)
	path := writeConfigFile(t, "server:\n  port: 9000\n")
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port from CONFIG_PATH file, got %d", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"HTTP_PORT":         "server.port",
		"SMTP_TO":           "channels.email.to",
		"nats_url":          "nats.url",
		"RATE_LIMIT_WINDOW": "security.rate_limit_window",
		"PATH":              "",
		"HOME":              "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
