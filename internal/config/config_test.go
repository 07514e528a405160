package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DREAMLIFT_API_URL", "")
	t.Setenv("ADMIN_CACHE_FRESHNESS", "")

	cfg := Load()
	if cfg.FreshnessWindow != 5*time.Minute {
		t.Errorf("FreshnessWindow = %v, want %v", cfg.FreshnessWindow, 5*time.Minute)
	}
	if cfg.UpstreamBaseURL != "http://localhost:5000" {
		t.Errorf("UpstreamBaseURL = %q, want %q", cfg.UpstreamBaseURL, "http://localhost:5000")
	}
	if cfg.MinDonationAmount != 100 {
		t.Errorf("MinDonationAmount = %d, want 100", cfg.MinDonationAmount)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DREAMLIFT_API_URL", "https://api.dreamlift.test/")
	t.Setenv("ADMIN_CACHE_FRESHNESS", "90")
	t.Setenv("DREAMLIFT_API_TIMEOUT", "3s")
	t.Setenv("STRIPE_CURRENCY", "EUR")

	cfg := Load()
	if cfg.UpstreamBaseURL != "https://api.dreamlift.test" {
		t.Errorf("UpstreamBaseURL = %q, want trailing slash trimmed", cfg.UpstreamBaseURL)
	}
	if cfg.FreshnessWindow != 90*time.Second {
		t.Errorf("FreshnessWindow = %v, want 90s", cfg.FreshnessWindow)
	}
	if cfg.UpstreamTimeout != 3*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 3s", cfg.UpstreamTimeout)
	}
	if cfg.StripeCurrency != "eur" {
		t.Errorf("StripeCurrency = %q, want eur", cfg.StripeCurrency)
	}
}

func TestValidate_FixesNonPositiveWindow(t *testing.T) {
	cfg := &Config{FreshnessWindow: -time.Second, JWTSecret: "s"}
	cfg.Validate(zap.NewNop())
	if cfg.FreshnessWindow != 5*time.Minute {
		t.Errorf("FreshnessWindow = %v, want 5m", cfg.FreshnessWindow)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"2m", 2 * time.Minute},
		{"30", 30 * time.Second},
		{"soon", time.Minute},
	}

	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		got := getEnvDuration("TEST_DURATION", time.Minute)
		if got != tt.want {
			t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestLoadCLI_MissingFile(t *testing.T) {
	cfg, err := LoadCLI("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadCLI() error = %v", err)
	}
	if *cfg != DefaultCLIConfig() {
		t.Errorf("LoadCLI(missing) = %+v, want defaults", *cfg)
	}
}

func TestLoadCLI_Layered(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	local := filepath.Join(dir, "local.yaml")
	writeFile(t, global, "base_url: https://api.dreamlift.test\ntimeout: 30s\nemail: ops@dreamlift.test\n")
	writeFile(t, local, "timeout: 5s\n")

	cfg, err := LoadCLI(global, local)
	if err != nil {
		t.Fatalf("LoadCLI() error = %v", err)
	}
	if cfg.BaseURL != "https://api.dreamlift.test" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s from the later layer", cfg.Timeout)
	}
	if cfg.Email != "ops@dreamlift.test" {
		t.Errorf("Email = %q", cfg.Email)
	}
}

func TestLoadCLI_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "base_url: http://x\npassword: hunter2\n")

	if _, err := LoadCLI(path); err == nil {
		t.Fatal("LoadCLI(unknown field) should return error")
	}
}

func TestSaveCLI_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &CLIConfig{BaseURL: "https://api.dreamlift.test", Timeout: 20 * time.Second, Token: "tok"}

	if err := SaveCLI(path, in); err != nil {
		t.Fatalf("SaveCLI() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	out, err := LoadCLI(path)
	if err != nil {
		t.Fatalf("LoadCLI() error = %v", err)
	}
	if *out != *in {
		t.Errorf("round trip = %+v, want %+v", *out, *in)
	}
}

func TestCLIApplyEnv(t *testing.T) {
	t.Setenv("DREAMLIFT_TOKEN", "env-token")
	t.Setenv("DREAMLIFT_TIMEOUT", "bogus")

	cfg := DefaultCLIConfig()
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatal("ApplyEnv() should reject an invalid timeout")
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Token)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
