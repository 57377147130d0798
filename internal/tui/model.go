// Package tui provides the Bubble Tea experiment interface.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/verte-zerg/fitts/internal/experiment"
	"github.com/verte-zerg/fitts/internal/geometry"
	"github.com/verte-zerg/fitts/internal/latency"
)

var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

type tickMsg time.Time

// Model implements the Bubble Tea experiment UI.
type Model struct {
	app     *experiment.App
	logger  *zap.Logger
	canvasW float64
	canvasH float64
	now     func() time.Time

	width  int
	height int
	view   viewport

	pointer    geometry.Point
	hasPointer bool
}

// NewModel constructs the experiment UI for an app laid out on a canvas of
// the given size.
func NewModel(app *experiment.App, canvasW, canvasH float64, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		app:     app,
		logger:  logger,
		canvasW: canvasW,
		canvasH: canvasH,
		now:     time.Now,
		view:    newViewport(80, 23, canvasW, canvasH),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/latency.PlaybackRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view = newViewport(msg.Width, msg.Height-1, m.canvasW, m.canvasH)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.app.Handle(experiment.Event{Kind: experiment.EventQuit, At: m.now()})
			return m, tea.Quit
		}
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tickMsg:
		if m.app.Done() {
			return m, nil
		}
		m.app.Cursor().Tick(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := m.view.toCanvas(msg.X, msg.Y)
	var ev experiment.Event
	switch msg.Action {
	case tea.MouseActionMotion:
		delta := geometry.Point{}
		if m.hasPointer {
			delta = p.Sub(m.pointer)
		}
		m.pointer, m.hasPointer = p, true
		ev = experiment.Event{Kind: experiment.EventMove, Point: p, Delta: delta, At: m.now()}
	case tea.MouseActionPress:
		ev = experiment.Event{Kind: experiment.EventClick, Point: p, Button: mouseButton(msg.Button), At: m.now()}
	default:
		return m, nil
	}
	if m.app.Handle(ev) {
		return m, tea.Quit
	}
	return m, nil
}

func mouseButton(b tea.MouseButton) experiment.Button {
	switch b {
	case tea.MouseButtonLeft:
		return experiment.ButtonLeft
	case tea.MouseButtonMiddle:
		return experiment.ButtonMiddle
	default:
		return experiment.ButtonRight
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	f := newFrame(m.view)
	start := m.app.StartScreen()
	if start.Visible() {
		m.drawStart(f, start)
	} else {
		for _, t := range m.app.Experiment().Targets() {
			kind := cellTarget
			if t.Marked {
				kind = cellMarked
			}
			f.disc(t, kind)
		}
	}
	cursor := m.app.Cursor()
	if cursor.Enabled() {
		col, row := m.view.toCell(cursor.Position())
		f.put(col, row, cell{kind: cellCursor, ch: '+'})
	}
	footer := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.renderFooter())
	return f.render() + "\n" + footer
}

func (m *Model) drawStart(f *frame, start *experiment.StartScreen) {
	circle := start.Circle()
	f.disc(circle, cellMarked)
	col, row := m.view.toCell(geometry.Point{X: circle.Center.X, Y: circle.Center.Y - circle.Radius})
	f.text(col, row-2, "Click the red circle to start", cellEmpty)

	kind, label := cellToggleOff, "latency off"
	if start.LatencyEnabled() {
		kind, label = cellToggleOn, "latency on"
	}
	f.rect(start.Toggle(), kind, label)
}

func (m *Model) renderFooter() string {
	var segments []string
	exp := m.app.Experiment()
	switch exp.State() {
	case experiment.StateIdle:
		segments = append(segments, "Start screen")
	case experiment.StateRoundActive:
		cfg := exp.Config()
		segments = append(segments,
			fmt.Sprintf("Round %d/%d", exp.Round()+1, cfg.Rounds()),
			fmt.Sprintf("Click %d/%d", exp.Clicks()+1, cfg.ClicksPerRound()),
			fmt.Sprintf("Hits %d", exp.Hits()),
		)
		if streak := exp.MissStreak(); streak > 0 {
			segments = append(segments, fmt.Sprintf("Misses in a row %d", streak))
		}
	case experiment.StateFinished:
		segments = append(segments, "Finished")
	}
	if cursor := m.app.Cursor(); cursor.Enabled() {
		segments = append(segments, fmt.Sprintf("Latency %d ms (%s)", cursor.Delay().Milliseconds(), cursor.Mode()))
	}
	segments = append(segments, "esc/q quit")
	footer := strings.Join(segments, "  ·  ")
	if m.width > 0 {
		footer = runewidth.Truncate(footer, m.width, "…")
	}
	return footerStyle.Render(footer)
}
