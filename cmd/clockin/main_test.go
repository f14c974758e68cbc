package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cli struct {
	t  *testing.T
	db string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("CLOCKIN_CONFIG", "")
	t.Setenv("CLOCKIN_TZ", "UTC")
	return &cli{t: t, db: filepath.Join(t.TempDir(), "clockin.db")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--db", c.db}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("clockin %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func expectContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output %q does not contain %q", got, want)
	}
}

func TestCLIWorkflow(t *testing.T) {
	c := newCLI(t)

	if _, err := c.run("whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn, got %v", err)
	}

	expectContains(t, c.mustRun("register", "--email", "Ada@example.com", "--name", "Ada", "--password", "pw"), "registered ada@example.com")
	expectContains(t, c.mustRun("whoami"), "Ada <ada@example.com>")

	expectContains(t, c.mustRun("session", "add", "--day", "2025-06-02", "--in", "11:30", "--out", "13:30"), "01:00:00 billed")
	expectContains(t, c.mustRun("session", "add", "--day", "2025-06-03", "--in", "08:00", "--out", "12:00"), "04:00:00 billed")
	expectContains(t, c.mustRun("session", "list"), "2025-06-02")
	days := c.mustRun("session", "days")
	expectContains(t, days, "BH")
	expectContains(t, days, "2025-06-03")

	expectContains(t, c.mustRun("clock", "status"), "not clocked in")
	if _, err := c.run("clock", "out"); err == nil {
		t.Error("expected clock out to fail when not clocked in")
	}

	expectContains(t, c.mustRun("settings", "set-goal", "20", "2025-06-02"), "20 business days")
	show := c.mustRun("settings", "show")
	expectContains(t, show, "goal: 20 business days from 2025-06-02")
	expectContains(t, show, "hours: 08:00-12:00, 13:00-17:00 (UTC)")
	expectContains(t, c.mustRun("settings", "theme"), "theme: light")
	if _, err := c.run("settings", "theme", "blue"); err == nil {
		t.Error("expected invalid theme to fail")
	}

	progress := c.mustRun("progress", "--calendar")
	expectContains(t, progress, "Goal: 20 business days")
	expectContains(t, progress, "2/20")
}

func TestCLIExportImport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--email", "ada@example.com", "--name", "Ada", "--password", "pw")
	c.mustRun("session", "add", "--day", "2025-06-02", "--in", "09:00", "--out", "10:00")

	path := filepath.Join(t.TempDir(), "export.json")
	expectContains(t, c.mustRun("export", "-o", path), "exported 1 session(s)")
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	expectContains(t, c.mustRun("import", path), "imported 0, overwritten 0, skipped 1, errored 0")

	csv := filepath.Join(t.TempDir(), "hours.csv")
	if err := os.WriteFile(csv, []byte("date,in,out\n2025-06-03,09:00,11:00\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	expectContains(t, c.mustRun("import", "--recompute", csv), "imported 1")
	expectContains(t, c.mustRun("session", "list"), "02:00:00")

	if _, err := c.run("import", filepath.Join(t.TempDir(), "notes.txt")); err == nil {
		t.Error("expected missing/unsupported file to fail")
	}
}

func TestCLILoginLogout(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--email", "ada@example.com", "--name", "Ada", "--password", "pw")
	expectContains(t, c.mustRun("logout"), "logged out")
	if _, err := c.run("clock", "in"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("expected errNotLoggedIn, got %v", err)
	}

	if _, err := c.run("login", "--email", "ada@example.com", "--password", "nope"); err == nil || !strings.Contains(err.Error(), "invalid password") {
		t.Errorf("expected invalid password, got %v", err)
	}
	if _, err := c.run("login", "--email", "bob@example.com", "--password", "pw"); err == nil || !strings.Contains(err.Error(), "no user") {
		t.Errorf("expected unknown user, got %v", err)
	}
	expectContains(t, c.mustRun("login", "--email", "ada@example.com", "--password", "pw"), "logged in as ada@example.com")

	expectContains(t, c.mustRun("clock", "in"), "started at")
	if _, err := c.run("clock", "in"); err == nil {
		t.Error("expected second clock in to fail")
	}
	expectContains(t, c.mustRun("clock", "status"), "clocked in since")
	expectContains(t, c.mustRun("clock", "out"), "billed")
	expectContains(t, c.mustRun("session", "rm", "1", "99"), "removed 1 session(s)")
}
