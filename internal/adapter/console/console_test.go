package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"clockin/internal/adapter/console"
	"clockin/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3600 + 61, "01:01:01"},
		{8*3600 + 30*60, "08:30:00"},
		{100 * 3600, "100:00:00"},
		{-5, "00:00:00"},
	}
	for _, tc := range tests {
		if got := console.FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q; want %q", tc.in, got, tc.want)
		}
	}
	if got := console.FormatHours(7.25); got != "7.2h" && got != "7.3h" {
		t.Errorf("FormatHours(7.25) = %q", got)
	}
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := console.NewNotifier(&buf)
	n.Notify(context.Background(), domain.Success("Clocked in"))
	n.Notify(context.Background(), domain.Warning("Outside hours"))
	n.Notify(context.Background(), domain.Failure("Boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for i, want := range []string{"Clocked in", "Outside hours", "Boom"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q; want it to contain %q", i, lines[i], want)
		}
	}
}

func TestRenderCalendar(t *testing.T) {
	cells := []domain.CalendarCell{
		{Index: 0, State: domain.CellCompleted, Level: domain.ActivityHigh},
		{Index: 1, State: domain.CellMissed},
		{Index: 2, State: domain.CellFuture},
		{Index: 3, State: domain.CellFuture},
		{Index: 4, State: domain.CellFuture},
		{Index: 5, State: domain.CellOutside},
	}
	out := console.RenderCalendar(cells, 5)
	rows := strings.Split(out, "\n")
	if len(rows) < 2 {
		t.Fatalf("expected at least two rows, got %q", out)
	}
	if !strings.Contains(rows[0], "█") || !strings.Contains(rows[0], "░") || strings.Count(rows[0], "·") != 3 {
		t.Errorf("unexpected first row %q", rows[0])
	}
	if !strings.Contains(out, "worked") {
		t.Error("expected legend")
	}
}

func TestRenderProgressBar(t *testing.T) {
	out := console.RenderProgressBar(5, 10, 10)
	if strings.Count(out, "█") != 5 || !strings.HasSuffix(out, "5/10") {
		t.Errorf("unexpected bar %q", out)
	}
	if out := console.RenderProgressBar(3, 0, 4); strings.Count(out, "█") != 0 {
		t.Errorf("zero goal should render an empty bar, got %q", out)
	}
}

func TestRenderDays(t *testing.T) {
	out := console.RenderDays([]domain.DaySummary{
		{Day: "2025-06-03", Count: 2, TotalSeconds: 3600, Adjusted: true},
		{Day: "2025-06-02", Count: 1, TotalSeconds: 7200, HasActive: true},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %q", out)
	}
	if !strings.Contains(lines[1], "01:00:00") || !strings.Contains(lines[1], "BH") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "active") || strings.Contains(lines[2], "BH") {
		t.Errorf("row 2 = %q", lines[2])
	}
}
