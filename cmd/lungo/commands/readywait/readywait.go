// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

// Package readywait implements the spinner shown by "lungo on --wait"
// while a machine heats up. It lives in its own package so the
// charmbracelet/bubbletea dependency (and its transitive closure:
// lipgloss, termenv, cellbuf) is only linked into binaries that
// actually wait interactively.
package readywait

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"

	"github.com/lungo-project/lungo/lib/clock"
	"github.com/lungo-project/lungo/lib/lamarzocco"
)

// Poll cadence: start fast so a machine that is already warm resolves
// quickly, back off so a cold machine is not hammered for the several
// minutes it takes to heat.
const (
	initialPollInterval = 2 * time.Second
	maxPollInterval     = 30 * time.Second
)

var (
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle  = lipgloss.NewStyle().Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// Config describes what to wait for.
type Config struct {
	// Client is the authenticated cloud client used for polling.
	Client *lamarzocco.Client

	// Serial identifies the machine to poll.
	Serial string

	// Name is the human-readable machine name shown next to the
	// spinner. Falls back to Serial when empty.
	Name string

	// Clock drives the poll timing. Defaults to the real clock;
	// tests inject a fake.
	Clock clock.Clock

	// Notifier sends the desktop notification fired when the machine
	// reaches ready, so a wait left in a background terminal still
	// gets noticed. Defaults to the system notifier; tests inject a
	// recorder.
	Notifier func(title, message string) error
}

// Wait polls the machine's dashboard until the coffee boiler reports
// ready, rendering a spinner with the machine's current status while
// it waits. Returns nil once the machine is ready, the poll error if
// a dashboard fetch fails, or the context error on cancellation.
func Wait(ctx context.Context, config Config) error {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Name == "" {
		config.Name = config.Serial
	}
	if config.Notifier == nil {
		config.Notifier = func(title, message string) error {
			return beeep.Notify(title, message, "")
		}
	}

	program := tea.NewProgram(newModel(ctx, config),
		tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := program.Run()
	if err != nil {
		return err
	}
	return resolve(final.(model))
}

// resolve translates the final model into the Wait result and, on the
// ready path, fires the desktop notification. Notification delivery is
// best-effort: a machine that is ready with no notification daemon is
// still ready.
func resolve(m model) error {
	switch {
	case m.err != nil:
		return m.err
	case m.canceled:
		return fmt.Errorf("wait canceled")
	}
	if m.config.Notifier != nil {
		_ = m.config.Notifier(m.config.Name+" is ready", "Your espresso machine is ready to brew")
	}
	return nil
}

// statusMsg carries one dashboard poll result into the message loop.
type statusMsg struct {
	status *lamarzocco.MachineStatus
	err    error
}

type model struct {
	ctx    context.Context
	config Config

	spinner  spinner.Model
	interval time.Duration
	status   string
	ready    bool
	canceled bool
	err      error
}

func newModel(ctx context.Context, config Config) model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return model{
		ctx:      ctx,
		config:   config,
		spinner:  s,
		interval: initialPollInterval,
		status:   "checking",
	}
}

func (m model) Init() tea.Cmd {
	// First poll is immediate; backoff applies between polls.
	return tea.Batch(m.spinner.Tick, m.poll(0))
}

// poll returns a command that waits for delay (or cancellation) and
// then fetches the machine's dashboard.
func (m model) poll(delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		if delay > 0 {
			select {
			case <-m.config.Clock.After(delay):
			case <-m.ctx.Done():
				return statusMsg{err: m.ctx.Err()}
			}
		}
		status, err := m.config.Client.Dashboard(m.ctx, m.config.Serial)
		return statusMsg{status: status, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if msg.status.IsReady() {
			m.ready = true
			return m, tea.Quit
		}
		m.status = msg.status.StatusString(m.config.Clock.Now())
		delay := m.interval
		if next := m.interval * 2; next <= maxPollInterval {
			m.interval = next
		} else {
			m.interval = maxPollInterval
		}
		return m, m.poll(delay)
	}

	return m, nil
}

func (m model) View() string {
	if m.ready {
		return readyStyle.Render(fmt.Sprintf("%s is ready", m.config.Name)) + "\n"
	}
	if m.err != nil || m.canceled {
		return ""
	}
	return fmt.Sprintf("%s Waiting for %s %s\n",
		m.spinner.View(), m.config.Name,
		statusStyle.Render("("+m.status+")"))
}
