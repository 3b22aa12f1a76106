package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pistonsim/internal/dynamo"
	"github.com/san-kum/pistonsim/internal/launcher"
)

const historyCapacity = 600

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	schematicStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
	failStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the launch in slow motion and renders a bore schematic with
// pressure and velocity histories.
type Model struct {
	launcher   *launcher.Launcher
	integrator dynamo.Integrator
	state      dynamo.State
	t, dt      float64

	slowdown float64 // simulated seconds advanced per wall second

	running bool
	failed  error

	pressureHist []float64
	velocityHist []float64

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	initialState  dynamo.State
}

func NewModel(l *launcher.Launcher, integ dynamo.Integrator, initState dynamo.State, dt float64) Model {
	params := l.GetParams()
	initialParams := make(map[string]float64, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	return Model{
		launcher:      l,
		integrator:    integ,
		state:         l.Clamp(initState),
		dt:            dt,
		slowdown:      0.002,
		running:       true,
		pressureHist:  make([]float64, 0, historyCapacity),
		velocityHist:  make([]float64, 0, historyCapacity),
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		initialState:  initState.Clone(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			m.slowdown *= 2
		case "-", "_":
			m.slowdown /= 2
		}
	case TickMsg:
		if m.running && m.failed == nil {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	budget := m.slowdown / 60
	for budget > 0 {
		h := m.dt
		if h > budget {
			h = budget
		}
		next, err := m.integrator.Step(m.launcher, m.state, m.t, h)
		if err != nil {
			m.failed = err
			m.running = false
			return
		}
		m.state = m.launcher.Clamp(next)
		m.t += h
		budget -= h
	}

	gauge, err := m.launcher.GaugePressure(m.state, m.t)
	if err != nil {
		m.failed = err
		m.running = false
		return
	}
	m.pressureHist = append(m.pressureHist, launcher.PaToKPa(gauge))
	m.velocityHist = append(m.velocityHist, m.state[launcher.ProjVel])
	if len(m.pressureHist) > historyCapacity {
		m.pressureHist = m.pressureHist[1:]
		m.velocityHist = m.velocityHist[1:]
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	newVal := m.params[key] * factor
	if err := m.launcher.SetParam(key, newVal); err != nil {
		return
	}
	m.params[key] = newVal
}

func (m *Model) reset() {
	m.t = 0
	m.state = m.launcher.Clamp(m.initialState.Clone())
	m.pressureHist = m.pressureHist[:0]
	m.velocityHist = m.velocityHist[:0]
	m.failed = nil
	m.running = true
	for k, v := range m.initialParams {
		m.params[k] = v
		m.launcher.SetParam(k, v)
	}
}

// schematic renders the cylinder and bore on one line: '#' piston, '@'
// pellet, '%' the compressed gas column between them.
func (m Model) schematic() string {
	p := m.launcher.Params()
	const cylCells, boreCells = 30, 26

	pistonCell := int(float64(cylCells-1) * m.state[launcher.PistonPos] / p.PistonTravel)
	pelletCell := int(float64(boreCells-1) * m.state[launcher.ProjPos] / p.BarrelLength)

	var b strings.Builder
	b.WriteString("|")
	for i := 0; i < cylCells; i++ {
		switch {
		case i < pistonCell:
			b.WriteString("=")
		case i == pistonCell:
			b.WriteString("#")
		default:
			b.WriteString("%")
		}
	}
	b.WriteString("[")
	for i := 0; i < boreCells; i++ {
		switch {
		case i < pelletCell:
			b.WriteString("%")
		case i == pelletCell:
			b.WriteString("@")
		default:
			b.WriteString(" ")
		}
	}
	b.WriteString("> muzzle")
	return b.String()
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("PISTONSIM LIVE") + "\n")

	status := "RUNNING"
	if m.failed != nil {
		status = failStyle.Render(fmt.Sprintf("FAILED: %v", m.failed))
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	s.WriteString(schematicStyle.Render(m.schematic()) + "\n\n")

	if len(m.pressureHist) > 1 {
		chart := asciigraph.Plot(m.pressureHist, asciigraph.Height(5), asciigraph.Width(56), asciigraph.Caption("gauge pressure (kPa)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.velocityHist) > 1 {
		chart := asciigraph.Plot(m.velocityHist, asciigraph.Height(5), asciigraph.Width(56), asciigraph.Caption("pellet velocity (m/s)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f ms", m.t*1000)) + "\n")
	s.WriteString(labelStyle.Render("Piston") + valueStyle.Render(fmt.Sprintf("%.1f mm  %.2f m/s", m.state[launcher.PistonPos]*1000, m.state[launcher.PistonVel])) + "\n")
	s.WriteString(labelStyle.Render("Pellet") + valueStyle.Render(fmt.Sprintf("%.1f mm  %.2f m/s", m.state[launcher.ProjPos]*1000, m.state[launcher.ProjVel])) + "\n")
	s.WriteString(labelStyle.Render("Slow-mo") + valueStyle.Render(fmt.Sprintf("%.4fx", m.slowdown)) + "\n")

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-12s %.4g", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit Tab:Param ↑↓:Tune +/-:Speed"))
	return s.String()
}
