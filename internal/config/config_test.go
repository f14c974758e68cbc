package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	s, err := cfg.Schedule()
	if err != nil {
		t.Fatal(err)
	}
	if s.MorningStart != 8*time.Hour || s.MorningEnd != 12*time.Hour || s.AfternoonStart != 13*time.Hour || s.AfternoonEnd != 17*time.Hour {
		t.Errorf("unexpected default schedule %+v", s)
	}
	if s.Location != time.Local {
		t.Error("expected local time by default")
	}
	if cfg.OIDC.Enabled() {
		t.Error("SSO must be off by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "clockin.yaml", `
addr: ":9090"
timezone: UTC
sessionTTL: 12h
businessHours:
  morningStart: "09:00"
  morningEnd: "12:30"
  afternoonStart: "13:30"
  afternoonEnd: "18:00"
corsOrigins: ["http://localhost:4200"]
oidc:
  issuer: https://id.example.com
  clientId: clockin
`)
	t.Setenv("ADDR", ":7070")
	t.Setenv("CLOCKIN_AFTERNOON_END", "17:30")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("env must override file, got %q", cfg.Addr)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.OIDC.Enabled() || len(cfg.OIDC.Scopes) != 3 {
		t.Errorf("unexpected OIDC %+v", cfg.OIDC)
	}
	s, err := cfg.Schedule()
	if err != nil {
		t.Fatal(err)
	}
	if s.MorningEnd != 12*time.Hour+30*time.Minute || s.AfternoonEnd != 17*time.Hour+30*time.Minute {
		t.Errorf("unexpected schedule %+v", s)
	}
	if s.Location.String() != "UTC" {
		t.Errorf("location = %v", s.Location)
	}
}

func TestLoadDotEnv(t *testing.T) {
	env := writeFile(t, ".env", "CLOCKIN_SINGLE_USER=ada@example.com\n")
	t.Cleanup(func() { _ = os.Unsetenv("CLOCKIN_SINGLE_USER") })

	cfg, err := Load("", env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SingleUser != "ada@example.com" {
		t.Errorf("SingleUser = %q", cfg.SingleUser)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "addr: [\n"},
		{"bad clock", "businessHours:\n  morningStart: nine\n"},
		{"unordered", "businessHours:\n  morningStart: \"13:00\"\n  morningEnd: \"12:00\"\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"zero ttl", "sessionTTL: 0s\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, "c.yaml", tc.yaml), filepath.Join(t.TempDir(), "none.env")); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"08:00", 8 * time.Hour, true},
		{"8:05", 8*time.Hour + 5*time.Minute, true},
		{"24:00", 24 * time.Hour, true},
		{"24:30", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
	}
	for _, tc := range tests {
		got, err := parseClock(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("parseClock(%q) = %v, %v", tc.in, got, err)
		}
	}
}
