package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pidsim/internal/loop"
	"github.com/san-kum/pidsim/internal/pid"
	"github.com/san-kum/pidsim/internal/plant"
	"github.com/san-kum/pidsim/internal/viz"
)

const (
	historyLen = 120
	plotHeight = 10
	targetStep = 1.0
)

type tickMsg time.Time

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model steps a closed loop on a timer and draws it. Gains are shown but
// cannot be changed; the plant target can.
type Model struct {
	name     string
	ctrl     *pid.Controller
	plant    plant.Plant
	sess     *loop.Session
	steps    int
	interval time.Duration

	paused bool
	done   bool
	last   loop.Sample
	errs   []float64
	width  int
}

// NewModel builds a live view. steps <= 0 runs until quit.
func NewModel(name string, ctrl *pid.Controller, p plant.Plant, cfg loop.Config, interval time.Duration) Model {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return Model{
		name:     name,
		ctrl:     ctrl,
		plant:    p,
		sess:     loop.NewSession(ctrl, p, cfg),
		steps:    cfg.Steps,
		interval: interval,
		errs:     make([]float64, 0, historyLen),
		width:    80,
	}
}

func (m Model) Init() tea.Cmd { return tick(m.interval) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused && !m.done {
			m.step()
		}
		if m.done {
			return m, nil
		}
		return m, tick(m.interval)
	}
	return m, nil
}

func (m *Model) step() {
	m.last = m.sess.Step()
	m.errs = append(m.errs, m.last.Error)
	if len(m.errs) > historyLen {
		m.errs = m.errs[1:]
	}
	if m.steps > 0 && m.sess.Steps() >= m.steps {
		m.done = true
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "+", "=":
		m.plant.SetTarget(m.plant.Target() + targetStep)
	case "-", "_":
		m.plant.SetTarget(m.plant.Target() - targetStep)
	}
	return m, nil
}

func (m Model) Paused() bool      { return m.paused }
func (m Model) Done() bool        { return m.done }
func (m Model) Last() loop.Sample { return m.last }

func (m Model) View() string {
	var b strings.Builder

	status := viz.StatusRunning.Render("running")
	switch {
	case m.done:
		status = viz.Subtle.Render("finished")
	case m.paused:
		status = viz.StatusPaused.Render("paused")
	}
	b.WriteString(viz.Title.Render("pidsim · "+m.name) + "  " + status + "\n\n")

	plotWidth := max(m.width-12, 20)
	b.WriteString(viz.PlotSeries(m.errs, "error", plotHeight, plotWidth))
	b.WriteString("\n\n")
	b.WriteString(viz.Sparkline(m.errs, plotWidth))
	b.WriteString("\n\n")

	g := m.ctrl.Gains()
	snap := m.ctrl.Snapshot()
	rows := []struct {
		label string
		value string
	}{
		{"t", fmt.Sprintf("%.3f", m.last.Time)},
		{"target", fmt.Sprintf("%.4g", m.plant.Target())},
		{"state", fmt.Sprintf("%.6g", m.plant.State())},
		{"error", fmt.Sprintf("%.6g", m.last.Error)},
		{"correction", fmt.Sprintf("%.6g", m.last.Correction)},
		{"gains", fmt.Sprintf("kp=%.3g ki=%.3g kd=%.3g", g.Kp, g.Ki, g.Kd)},
		{"terms", fmt.Sprintf("p=%.4g i=%.4g d=%.4g", snap.Proportional, snap.Integral, snap.Derivative)},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = viz.MetricLabel.Render(r.label) + viz.MetricValue.Render(r.value)
	}
	b.WriteString(viz.Panel.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if m.steps > 0 {
		pct := float64(m.sess.Steps()) / float64(m.steps)
		b.WriteString(viz.ProgressBar(pct, 40) + fmt.Sprintf(" %d/%d\n", m.sess.Steps(), m.steps))
	}

	b.WriteString(viz.KeyHint.Render("space pause · +/- target · q quit"))
	return b.String()
}

// Run starts the live view full screen and blocks until it exits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
