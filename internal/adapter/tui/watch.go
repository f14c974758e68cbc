// Package tui holds the interactive terminal views.
package tui

import (
	"context"
	"fmt"
	"time"

	"clockin/internal/adapter/console"
	"clockin/internal/app"
	"clockin/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ClockOutFunc closes the watched session.
type ClockOutFunc func(ctx context.Context) (domain.Session, error)

type tickMsg int64

type timerClosedMsg struct{}

type clockedOutMsg struct {
	sess domain.Session
	err  error
}

var (
	clockStyle = lipgloss.NewStyle().Foreground(console.Green).Bold(true).Padding(1, 4)
	helpStyle  = console.Muted
)

// WatchModel shows the running billable time of an open session.
type WatchModel struct {
	ctx      context.Context
	timer    *app.LiveTimer
	ticks    <-chan int64
	session  domain.Session
	seconds  int64
	clockOut ClockOutFunc

	closed *domain.Session
	err    error
}

// NewWatch starts timer for sess and returns a model fed by its ticks.
func NewWatch(ctx context.Context, timer *app.LiveTimer, sess domain.Session, interval time.Duration, clockOut ClockOutFunc) WatchModel {
	return WatchModel{
		ctx:      ctx,
		timer:    timer,
		ticks:    timer.Start(ctx, sess.ClockIn, interval),
		session:  sess,
		clockOut: clockOut,
	}
}

func waitTick(ch <-chan int64) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return timerClosedMsg{}
		}
		return tickMsg(v)
	}
}

func (m WatchModel) Init() tea.Cmd {
	return waitTick(m.ticks)
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.timer.Stop()
			return m, tea.Quit
		case "o":
			m.timer.Stop()
			return m, func() tea.Msg {
				sess, err := m.clockOut(m.ctx)
				return clockedOutMsg{sess: sess, err: err}
			}
		}
	case tickMsg:
		m.seconds = int64(msg)
		return m, waitTick(m.ticks)
	case timerClosedMsg:
		return m, nil
	case clockedOutMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.closed = &msg.sess
			m.seconds = msg.sess.Duration
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m WatchModel) View() string {
	since := m.session.ClockIn.Local().Format("15:04")
	body := console.Title.Render("Clocked in since "+since) + "\n" +
		clockStyle.Render(console.FormatDuration(m.seconds)) + "\n"
	switch {
	case m.err != nil:
		body += lipgloss.NewStyle().Foreground(console.Red).Render("clock out failed: "+m.err.Error()) + "\n"
	case m.closed != nil:
		body += fmt.Sprintf("Clocked out, %s billed\n", console.FormatDuration(m.closed.Duration))
	default:
		body += helpStyle.Render("o clock out • q quit") + "\n"
	}
	return console.Box.Render(body)
}

// ClockedOut returns the closed session when the user clocked out.
func (m WatchModel) ClockedOut() (*domain.Session, error) {
	return m.closed, m.err
}

// RunWatch runs the watch view until the user quits or clocks out.
func RunWatch(m WatchModel) (WatchModel, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		m.timer.Stop()
		return m, err
	}
	return final.(WatchModel), nil
}
