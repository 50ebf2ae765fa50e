// Package tui is the terminal adapter for the Fifteen Puzzle. It drives one
// in-process engine from the bubbletea update loop, which serialises every
// engine call, and keeps the elapsed time with a bubbles stopwatch.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/fifteen-puzzle/game/engine"
)

// Model is the bubbletea model of the terminal puzzle
type Model struct {
	engine *engine.PuzzleEngine
	keys   KeyMap
	help   help.Model
	clock  stopwatch.Model

	cursor        engine.Position
	shuffleSteps  int
	width, height int

	// bell receives the terminal bell when the puzzle is solved
	bell io.Writer
}

// Option configures a Model
type Option func(*Model)

// WithShuffleSteps overrides the configured shuffle length
func WithShuffleSteps(steps int) Option {
	return func(m *Model) {
		m.shuffleSteps = steps
	}
}

// WithBell redirects the victory bell, os.Stderr by default
func WithBell(w io.Writer) Option {
	return func(m *Model) {
		m.bell = w
	}
}

// WithKeyMap replaces the default key bindings
func WithKeyMap(keys KeyMap) Option {
	return func(m *Model) {
		m.keys = keys
	}
}

// New creates a model around eng. The board is shown as the engine has it;
// the clock starts on the first shuffle.
func New(eng *engine.PuzzleEngine, opts ...Option) Model {
	m := Model{
		engine:       eng,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		clock:        newClock(),
		cursor:       eng.BlankPosition(),
		shuffleSteps: eng.GetConfig().EffectiveShuffleSteps(),
		bell:         os.Stderr,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// NewProgram wraps the model in a bubbletea program with mouse support
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, opts...)
	return tea.NewProgram(m, opts...)
}

func newClock() stopwatch.Model {
	return stopwatch.NewWithInterval(time.Second)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		pos, ok := cellAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.cursor = pos
		return m.selectTile(pos)
	}

	// Stopwatch messages; ticks from a replaced clock carry another ID and
	// are ignored by it
	var cmd tea.Cmd
	m.clock, cmd = m.clock.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.cursor.Y = (m.cursor.Y - 1 + engine.GridSize) % engine.GridSize

	case key.Matches(msg, m.keys.Down):
		m.cursor.Y = (m.cursor.Y + 1) % engine.GridSize

	case key.Matches(msg, m.keys.Left):
		m.cursor.X = (m.cursor.X - 1 + engine.GridSize) % engine.GridSize

	case key.Matches(msg, m.keys.Right):
		m.cursor.X = (m.cursor.X + 1) % engine.GridSize

	case key.Matches(msg, m.keys.Select):
		return m.selectTile(m.cursor)

	case key.Matches(msg, m.keys.Shuffle):
		m.engine.Shuffle(m.shuffleSteps)
		m.clock = newClock()
		return m, m.clock.Init()

	case key.Matches(msg, m.keys.Reset):
		m.engine.Reinitialize()
		m.clock = newClock()
		m.cursor = m.engine.BlankPosition()

	case key.Matches(msg, m.keys.Background):
		count := len(m.engine.GetConfig().Backgrounds)
		next := (m.engine.GetState().Background + 1) % count
		// Indexes come from the config, so this cannot fail
		_ = m.engine.SetBackground(next)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// selectTile forwards a selection to the engine. On the solving move the
// clock stops and the bell rings.
func (m Model) selectTile(pos engine.Position) (tea.Model, tea.Cmd) {
	result := m.engine.MoveTile(pos)
	if !result.Moved || result.Event == nil {
		return m, nil
	}
	return m, tea.Batch(m.clock.Stop(), ringBell(m.bell))
}

func ringBell(w io.Writer) tea.Cmd {
	return func() tea.Msg {
		fmt.Fprint(w, "\a")
		return nil
	}
}

// cellAt maps terminal coordinates to the board cell under them
func cellAt(x, y int) (engine.Position, bool) {
	if x < boardLeft || y < boardTop {
		return engine.Position{}, false
	}
	pos := engine.Position{
		X: (x - boardLeft) / tileWidth,
		Y: (y - boardTop) / tileHeight,
	}
	return pos, pos.InBounds()
}

// Elapsed returns the clock's elapsed time
func (m Model) Elapsed() time.Duration {
	return m.clock.Elapsed()
}

// Cursor returns the highlighted cell
func (m Model) Cursor() engine.Position {
	return m.cursor
}

func (m Model) View() string {
	state := m.engine.GetState()
	config := m.engine.GetConfig()
	background := config.Backgrounds[state.Background]

	var b strings.Builder
	b.WriteString(titleStyle.Foreground(accentColor(state.Background)).
		Render(fmt.Sprintf("%s · %s", config.Name, background.Name)))
	b.WriteString("\n\n")
	b.WriteString(m.renderBoard(state))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statsLine()))
	b.WriteString("\n")

	if state.Solved {
		b.WriteString(victoryStyle.Render(state.Message))
	} else {
		b.WriteString(state.Message)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) statsLine() string {
	format := m.engine.GetConfig().Messages.Stats
	if format == "" {
		format = "Moves: %d, Time: %ds"
	}
	return fmt.Sprintf(format, m.engine.MoveCount(), int(m.clock.Elapsed()/time.Second))
}

func (m Model) renderBoard(state *engine.PuzzleState) string {
	grid := engine.Grid(state)
	accent := accentColor(state.Background)

	rows := make([]string, engine.GridSize)
	for y := 0; y < engine.GridSize; y++ {
		cells := make([]string, engine.GridSize)
		for x := 0; x < engine.GridSize; x++ {
			pos := engine.Position{X: x, Y: y}
			cells[x] = m.renderCell(pos, grid[y][x], accent, state.Solved)
		}
		rows[y] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}

	style := boardStyle
	if state.Solved {
		style = style.BorderForeground(goldColor)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderCell(pos engine.Position, value int, accent lipgloss.Color, solved bool) string {
	if value == 0 {
		style := blankStyle
		if pos == m.cursor {
			style = style.Background(borderColor)
		}
		return style.Render("")
	}

	style := tileStyle.Background(lipgloss.Color("#3A3A3A"))
	if engine.HomePosition(value) == pos {
		style = style.Background(accent)
	}
	if !solved && m.engine.IsMovable(pos) {
		style = style.Bold(true).Underline(true)
	}
	if pos == m.cursor {
		style = style.Reverse(true)
	}
	return style.Render(fmt.Sprintf("%d", value))
}
