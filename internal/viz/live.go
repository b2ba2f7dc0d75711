package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/nexpath/thermsim/internal/thermal"
)

const traceCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a simulation from the update loop and shows the running
// temperature trace. The simulator is owned by the model for the whole
// program lifetime; nothing else may step it concurrently.
type Model struct {
	sim           *thermal.Simulator
	totalSteps    int
	stepsPerFrame int
	frameRate     int

	maxTrace []float64
	avgTrace []float64
	last     thermal.Sample

	done bool
	err  error
}

func NewModel(sim *thermal.Simulator, totalSteps, stepsPerFrame, frameRate int) Model {
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	if frameRate < 1 {
		frameRate = 30
	}
	return Model{
		sim:           sim,
		totalSteps:    totalSteps,
		stepsPerFrame: stepsPerFrame,
		frameRate:     frameRate,
		maxTrace:      make([]float64, 0, traceCapacity),
		avgTrace:      make([]float64, 0, traceCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case TickMsg:
		if m.done || m.err != nil {
			return m, nil
		}
		for i := 0; i < m.stepsPerFrame && m.sim.Steps() < m.totalSteps; i++ {
			if err := m.sim.Step(); err != nil {
				m.err = err
				return m, nil
			}
		}

		snap, err := m.sim.Snapshot()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.last = snap
		m.maxTrace = appendTrace(m.maxTrace, snap.MaxTemp)
		m.avgTrace = appendTrace(m.avgTrace, snap.AvgTemp)

		if m.sim.Steps() >= m.totalSteps {
			m.done = true
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func appendTrace(trace []float64, v float64) []float64 {
	if len(trace) >= traceCapacity {
		trace = trace[1:]
	}
	return append(trace, v)
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("thermsim live view"))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(warnStyle.Render(fmt.Sprintf("error: %v", m.err)))
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("q to quit"))
		return sb.String()
	}

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(valueStyle.Render(value))
		sb.WriteString("\n")
	}
	row("time", fmt.Sprintf("%.2f s", m.sim.Clock()))
	row("steps", fmt.Sprintf("%d / %d", m.sim.Steps(), m.totalSteps))
	row("max temp", fmt.Sprintf("%.1f °C", m.last.MaxTemp))
	row("min temp", fmt.Sprintf("%.1f °C", m.last.MinTemp))
	row("avg temp", fmt.Sprintf("%.1f °C", m.last.AvgTemp))
	if g := m.sim.Grid(); g != nil {
		row("material", fmt.Sprintf("%d voxels", g.MaterialCount()))
	}

	if len(m.maxTrace) > 1 {
		graph := asciigraph.PlotMany(
			[][]float64{m.maxTrace, m.avgTrace},
			asciigraph.Height(12),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		)
		sb.WriteString(graphStyle.Render(graph))
		sb.WriteString("\n")
	}

	if m.done {
		sb.WriteString(warnStyle.Render("simulation complete"))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("q to quit"))
	return sb.String()
}

// Run steps the simulator to totalSteps inside a live terminal view.
func Run(sim *thermal.Simulator, totalSteps, stepsPerFrame, frameRate int) error {
	p := tea.NewProgram(NewModel(sim, totalSteps, stepsPerFrame, frameRate))
	_, err := p.Run()
	return err
}
