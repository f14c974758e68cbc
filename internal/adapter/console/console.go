// Package console renders notices, durations and the goal calendar for the
// terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"clockin/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	Subtext  = lipgloss.Color("#a6adc8")
	Surface  = lipgloss.Color("#45475a")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext)
	Box   = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Surface).
		Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// Notifier prints notices to a writer, one per line.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewNotifier creates a Notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

var _ domain.Notifier = (*Notifier)(nil)

// Notify implements domain.Notifier.
func (n *Notifier) Notify(_ context.Context, notice domain.Notice) {
	var line string
	switch notice.Severity {
	case domain.SeverityWarning:
		line = warningStyle.Render("! " + notice.Message)
	case domain.SeverityError:
		line = errorStyle.Render("x " + notice.Message)
	default:
		line = successStyle.Render("✓ " + notice.Message)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, line)
}

// FormatDuration renders seconds as HH:MM:SS. Negative values render as zero.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// FormatHours renders fractional hours with one decimal, e.g. "7.5h".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

// Cell glyphs, distinguishable without color.
const (
	glyphCompleted = "█"
	glyphMissed    = "░"
	glyphFuture    = "·"
	glyphOutside   = " "
)

var levelColors = map[domain.ActivityLevel]lipgloss.Color{
	domain.ActivityNone:   Surface,
	domain.ActivityLow:    Yellow,
	domain.ActivityMedium: Sapphire,
	domain.ActivityHigh:   Green,
}

func cellGlyph(c domain.CalendarCell) string {
	switch c.State {
	case domain.CellCompleted:
		return lipgloss.NewStyle().Foreground(levelColors[c.Level]).Render(glyphCompleted)
	case domain.CellMissed:
		return lipgloss.NewStyle().Foreground(Red).Render(glyphMissed)
	case domain.CellFuture:
		return Muted.Render(glyphFuture)
	default:
		return glyphOutside
	}
}

// RenderCalendar lays cells out in rows of columns, five (one business
// week) when columns <= 0, followed by a legend.
func RenderCalendar(cells []domain.CalendarCell, columns int) string {
	if columns <= 0 {
		columns = 5
	}
	var b strings.Builder
	for i, c := range cells {
		if i > 0 && i%columns == 0 {
			b.WriteByte('\n')
		} else if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(cellGlyph(c))
	}
	b.WriteString("\n\n")
	b.WriteString(Muted.Render(fmt.Sprintf("%s worked  %s missed  %s upcoming", glyphCompleted, glyphMissed, glyphFuture)))
	return b.String()
}

// RenderProgressBar draws completed/required as a bar width cells wide.
func RenderProgressBar(completed, required, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := 0
	if required > 0 {
		filled = completed * width / required
	}
	if filled > width {
		filled = width
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d/%d", bar, completed, required)
}

// RenderDays formats day rows as an aligned table. Days whose billed time
// differs from wall-clock time are flagged BH.
func RenderDays(rows []domain.DaySummary) string {
	var b strings.Builder
	b.WriteString(Title.Render(fmt.Sprintf("%-10s  %8s  %8s  %s", "DAY", "SESSIONS", "TOTAL", "")))
	for _, r := range rows {
		flags := ""
		if r.Adjusted {
			flags = "BH"
		}
		if r.HasActive {
			flags = strings.TrimSpace(flags + " active")
		}
		fmt.Fprintf(&b, "\n%-10s  %8d  %8s  %s", r.Day, r.Count, FormatDuration(r.TotalSeconds), flags)
	}
	return b.String()
}
