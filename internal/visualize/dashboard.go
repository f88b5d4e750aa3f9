// Package visualize renders a live terminal dashboard of engine state,
// draining the engine's visualization and harmony-state queues from the
// control thread.
package visualize

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"harmonium/internal/engine"
)

var (
	primaryColor = lipgloss.Color("#00FFFF")
	accentColor  = lipgloss.Color("#00FF00")
	dimColor     = lipgloss.Color("#666666")
	rootColor    = lipgloss.Color("#FF6666")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	chordStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	stepOnStyle = lipgloss.NewStyle().Foreground(accentColor)
	stepOffStyle = lipgloss.NewStyle().Foreground(dimColor)
	cursorStyle = lipgloss.NewStyle().Foreground(rootColor).Bold(true)
	logStyle    = lipgloss.NewStyle().Foreground(dimColor)
)

const maxEventLog = 12

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(midi uint8) string {
	return fmt.Sprintf("%s%d", noteNames[midi%12], int(midi)/12-1)
}

func instrumentName(channel uint8) string {
	switch channel {
	case 0:
		return "Bass"
	case 1:
		return "Lead"
	case 2:
		return "Snare"
	case 3:
		return "Hat"
	default:
		return "?"
	}
}

// TickMsg drives the dashboard's poll loop.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Dashboard is a bubbletea model that polls an Engine's lock-free
// visualization queues and renders the current musical state.
type Dashboard struct {
	viz     *engine.RingBuffer[engine.VisualizationEvent]
	harmony *engine.RingBuffer[engine.HarmonyState]

	current  engine.HarmonyState
	haveData bool
	events   []engine.VisualizationEvent

	startTime time.Time
	quitting  bool
	width     int
}

// NewDashboard wires a dashboard to the given engine's queue readers.
func NewDashboard(eng *engine.Engine) *Dashboard {
	return &Dashboard{
		viz:     eng.VisualizationReader(),
		harmony: eng.HarmonyStateReader(),
	}
}

// Init implements tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	d.startTime = time.Now()
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

// Update implements tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			d.quitting = true
			return d, tea.Quit
		}
	case tea.WindowSizeMsg:
		d.width = msg.Width
	case TickMsg:
		d.drain()
		return d, tickCmd()
	}
	return d, nil
}

func (d *Dashboard) drain() {
	for {
		hs, ok := d.harmony.Pop()
		if !ok {
			break
		}
		d.current = hs
		d.haveData = true
	}
	for {
		ev, ok := d.viz.Pop()
		if !ok {
			break
		}
		d.events = append(d.events, ev)
		if len(d.events) > maxEventLog {
			d.events = d.events[len(d.events)-maxEventLog:]
		}
	}
}

// View implements tea.Model.
func (d *Dashboard) View() string {
	if d.quitting {
		return ""
	}
	if !d.haveData {
		return headerStyle.Render("waiting for engine state...") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n",
		titleStyle.Render("harmonium"),
		headerStyle.Render(fmt.Sprintf("measure %d  step %d", d.current.MeasureNumber, d.current.CurrentStep)))
	fmt.Fprintf(&b, "%s  %s\n\n",
		headerStyle.Render("chord"),
		chordStyle.Render(d.current.CurrentChordName))

	b.WriteString(d.renderPattern("primary ", d.current.PrimaryPattern, d.current.CurrentStep))
	b.WriteString(d.renderPattern("secondary", d.current.SecondaryPattern, d.current.CurrentStep))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("recent notes") + "\n")
	for _, ev := range d.events {
		fmt.Fprintf(&b, "  %s\n", logStyle.Render(fmt.Sprintf("step %-4d %-6s %s",
			ev.Step, instrumentName(ev.Instrument), noteName(ev.NoteMIDI))))
	}

	b.WriteString("\n" + headerStyle.Render("q to quit") + "\n")
	return b.String()
}

func (d *Dashboard) renderPattern(label string, pattern []bool, currentStep int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ", headerStyle.Render(label))
	for i, on := range pattern {
		sym := "-"
		if on {
			sym = "x"
		}
		style := stepOffStyle
		if on {
			style = stepOnStyle
		}
		if i == currentStep%max(len(pattern), 1) {
			b.WriteString(cursorStyle.Render(sym))
		} else {
			b.WriteString(style.Render(sym))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Run starts the alt-screen bubbletea program and blocks until the user
// quits.
func (d *Dashboard) Run() error {
	p := tea.NewProgram(d, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// IsQuitting reports whether the user has requested to exit.
func (d *Dashboard) IsQuitting() bool { return d.quitting }
