// Package config loads settings from an optional YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clockin/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Hours holds the business-hours windows as HH:MM strings.
type Hours struct {
	MorningStart   string `yaml:"morningStart"`
	MorningEnd     string `yaml:"morningEnd"`
	AfternoonStart string `yaml:"afternoonStart"`
	AfternoonEnd   string `yaml:"afternoonEnd"`
}

// OIDC holds the SSO provider settings.
type OIDC struct {
	Issuer       string   `yaml:"issuer"`
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	RedirectURL  string   `yaml:"redirectUrl"`
	Scopes       []string `yaml:"scopes"`
}

// Enabled reports whether enough is configured to attempt SSO.
func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}

// Config is the process configuration.
type Config struct {
	Addr        string        `yaml:"addr"`
	WebDir      string        `yaml:"webDir"`
	DBPath      string        `yaml:"dbPath"`
	DatabaseURL string        `yaml:"databaseUrl"`
	Timezone    string        `yaml:"timezone"`
	Hours       Hours         `yaml:"businessHours"`
	SessionTTL  time.Duration `yaml:"sessionTTL"`
	CORSOrigins []string      `yaml:"corsOrigins"`
	// SingleUser disables login on the HTTP server and acts as this email.
	SingleUser string `yaml:"singleUser"`
	OIDC       OIDC   `yaml:"oidc"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:       ":8080",
		WebDir:     "web",
		DBPath:     defaultDBPath(),
		Timezone:   "Local",
		SessionTTL: 24 * time.Hour,
		Hours: Hours{
			MorningStart:   "08:00",
			MorningEnd:     "12:00",
			AfternoonStart: "13:00",
			AfternoonEnd:   "17:00",
		},
		OIDC: OIDC{Scopes: []string{"openid", "profile", "email"}},
	}
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".clockin", "clockin.db")
	}
	return filepath.Join(dir, "clockin", "clockin.db")
}

// Load builds the configuration. envFiles are loaded with godotenv (".env"
// when none are given; missing files are ignored) without overriding
// variables already set. path names a YAML file and falls back to
// $CLOCKIN_CONFIG; an empty path skips the file.
func Load(path string, envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := Default()
	if path == "" {
		path = os.Getenv("CLOCKIN_CONFIG")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Addr, "ADDR")
	set(&c.WebDir, "WEB_DIR")
	set(&c.DatabaseURL, "DATABASE_URL")
	set(&c.DBPath, "CLOCKIN_DB")
	set(&c.Timezone, "CLOCKIN_TZ")
	set(&c.Hours.MorningStart, "CLOCKIN_MORNING_START")
	set(&c.Hours.MorningEnd, "CLOCKIN_MORNING_END")
	set(&c.Hours.AfternoonStart, "CLOCKIN_AFTERNOON_START")
	set(&c.Hours.AfternoonEnd, "CLOCKIN_AFTERNOON_END")
	set(&c.SingleUser, "CLOCKIN_SINGLE_USER")
	set(&c.OIDC.Issuer, "OIDC_ISSUER")
	set(&c.OIDC.ClientID, "OIDC_CLIENT_ID")
	set(&c.OIDC.ClientSecret, "OIDC_CLIENT_SECRET")
	set(&c.OIDC.RedirectURL, "OIDC_REDIRECT_URL")

	if v := getenv("CLOCKIN_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = d
		}
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
}

// Validate checks the timezone and business hours.
func (c Config) Validate() error {
	if _, err := c.Schedule(); err != nil {
		return err
	}
	if c.SessionTTL <= 0 {
		return errors.New("sessionTTL must be positive")
	}
	return nil
}

// Location resolves Timezone; "" and "Local" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Schedule builds the business-hours schedule.
func (c Config) Schedule() (domain.Schedule, error) {
	loc, err := c.Location()
	if err != nil {
		return domain.Schedule{}, err
	}
	var s domain.Schedule
	for _, f := range []struct {
		dst   *time.Duration
		value string
		name  string
	}{
		{&s.MorningStart, c.Hours.MorningStart, "morningStart"},
		{&s.MorningEnd, c.Hours.MorningEnd, "morningEnd"},
		{&s.AfternoonStart, c.Hours.AfternoonStart, "afternoonStart"},
		{&s.AfternoonEnd, c.Hours.AfternoonEnd, "afternoonEnd"},
	} {
		d, err := parseClock(f.value)
		if err != nil {
			return domain.Schedule{}, fmt.Errorf("businessHours.%s: %w", f.name, err)
		}
		*f.dst = d
	}
	s.Location = loc
	if err := s.Validate(); err != nil {
		return domain.Schedule{}, err
	}
	return s, nil
}

// parseClock reads HH:MM as an offset from midnight. "24:00" is allowed as
// the end of the day.
func parseClock(v string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", v)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("out of range: %q", v)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
