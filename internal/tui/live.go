package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/coagsim/internal/aerosol"
	"github.com/san-kum/coagsim/internal/dynamo"
)

const (
	historyCapacity = 600
	frameRate       = 30
	maxStepsPerTick = 64
)

type TickMsg time.Time

// Live steps a coagulation system on every frame and draws the evolving size
// distribution. It quits on q, ctrl+c or when the run reaches its duration.
type Live struct {
	title    string
	sys      dynamo.System
	integ    dynamo.Integrator
	widths   []float64
	x, x0    dynamo.State
	t, dt    float64
	duration float64
	v0       float64

	stepsPerTick int
	running      bool
	done         bool
	numberHist   []float64
}

func NewLive(title string, sys dynamo.System, integ dynamo.Integrator, bins aerosol.Bins, x0 dynamo.State, dt, duration float64) Live {
	m := Live{
		title:        title,
		sys:          sys,
		integ:        integ,
		widths:       bins.LogWidths(),
		x:            x0.Clone(),
		x0:           x0.Clone(),
		dt:           dt,
		duration:     duration,
		stepsPerTick: 1,
		running:      true,
		numberHist:   make([]float64, 0, historyCapacity),
	}
	m.v0 = m.invariant(m.x)
	m.record()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Init() tea.Cmd { return tick() }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		}
		return m, nil
	case TickMsg:
		if m.running && !m.done {
			for i := 0; i < m.stepsPerTick && !m.done; i++ {
				m.step()
			}
		}
		if m.done {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) step() {
	dt := math.Min(m.dt, m.duration-m.t)
	m.x = m.integ.Step(m.sys, m.x, m.t, dt).ClipNegative()
	m.t += dt
	m.record()
	if m.t >= m.duration*(1-1e-9) || !m.x.IsValid() {
		m.done = true
	}
}

func (m *Live) record() {
	if len(m.numberHist) >= historyCapacity {
		m.numberHist = m.numberHist[1:]
	}
	m.numberHist = append(m.numberHist, floats.Sum(m.x))
}

func (m *Live) reset() {
	m.x = m.x0.Clone()
	m.t = 0
	m.done = false
	m.numberHist = m.numberHist[:0]
	m.record()
}

func (m Live) invariant(x dynamo.State) float64 {
	if c, ok := m.sys.(dynamo.Conserved); ok {
		return c.Invariant(x)
	}
	return 0
}

func (m Live) State() dynamo.State { return m.x.Clone() }
func (m Live) Time() float64       { return m.t }
func (m Live) Done() bool          { return m.done }

func (m Live) View() string {
	status := statusRunning.Render("RUNNING")
	switch {
	case m.done:
		status = statusDone.Render("DONE")
	case !m.running:
		status = statusPaused.Render("PAUSED")
	}

	plot := graphStyle.Render(DistributionPlot(m.widths, m.x, "log10 dN/dln r [cm-3] vs bin"))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(status + "\n\n")
	s.WriteString(stat("Time", fmt.Sprintf("%.0f / %.0f s", m.t, m.duration)))
	s.WriteString(stat("Number", fmt.Sprintf("%.4g cm-3", floats.Sum(m.x))))
	if m.v0 != 0 {
		s.WriteString(stat("Drift", fmt.Sprintf("%.2e", math.Abs(m.invariant(m.x)-m.v0)/m.v0)))
	}
	s.WriteString(stat("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick)))
	if len(m.numberHist) > 1 {
		s.WriteString("\n" + asciigraph.Plot(m.numberHist, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("N(t)")) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\n+/-:Speed"))

	return lipgloss.JoinHorizontal(lipgloss.Top, plot, statsStyle.Render(s.String()))
}

// Run shows the live view until it quits and returns the final model.
func Run(m Live) (Live, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m, err
	}
	return final.(Live), nil
}
