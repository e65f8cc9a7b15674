package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"intervals/internal/ui/theme"
	playbackview "intervals/internal/ui/views/playback"
	workoutsview "intervals/internal/ui/views/workouts"
)

type screen int

const (
	screenWorkouts screen = iota
	screenPlayback
)

// WorkoutsReceivedMsg is sent from outside the program when a sync delivered
// workouts, so the listing can refresh.
type WorkoutsReceivedMsg struct {
	Count int
}

type keyMap struct {
	Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

// Model routes between the workout listing and the live countdown.
type Model struct {
	workouts workoutsview.Port
	player   playbackview.Port
	speed    float64

	listView workoutsview.Model
	playView playbackview.Model
	active   screen
	keys     keyMap
	status   string
	width    int
	height   int
}

func NewModel(workouts workoutsview.Port, player playbackview.Port, sampleWhenEmpty bool, speed float64) Model {
	return Model{
		workouts: workouts,
		player:   player,
		speed:    speed,
		listView: workoutsview.New(workouts, sampleWhenEmpty),
		keys:     defaultKeys(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.listView.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(0, msg.Height-2)}
		var c1, c2 tea.Cmd
		m.listView, c1 = m.listView.Update(inner)
		if m.active == screenPlayback {
			m.playView, c2 = m.playView.Update(inner)
		}
		return m, tea.Batch(c1, c2)

	case WorkoutsReceivedMsg:
		m.status = fmt.Sprintf("received %d workout(s) from peer", msg.Count)
		var cmd tea.Cmd
		m.listView, cmd = m.listView.Update(workoutsview.ReloadMsg{Reason: m.status})
		return m, cmd

	case workoutsview.PlayMsg:
		m.playView = playbackview.New(m.player, msg.WorkoutID, m.speed, false)
		m.active = screenPlayback
		var sizeCmd tea.Cmd
		m.playView, sizeCmd = m.playView.Update(tea.WindowSizeMsg{Width: m.width, Height: max(0, m.height-2)})
		return m, tea.Batch(m.playView.Init(), sizeCmd)

	case playbackview.FinishedMsg:
		var cmd tea.Cmd
		m.playView, cmd = m.playView.Update(msg)
		switch {
		case msg.Err != nil:
			m.status = "playback failed: " + msg.Err.Error()
		case msg.Final.Finished:
			m.status = "workout complete"
		default:
			m.status = "workout stopped"
		}
		return m, cmd

	case tea.KeyMsg:
		if m.active == screenPlayback {
			if m.playView.Done() && (msg.String() == "q" || msg.String() == "esc" || msg.String() == "enter") {
				m.active = screenWorkouts
				return m, nil
			}
			if msg.String() == "ctrl+c" {
				m.playView.Stop()
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.playView, cmd = m.playView.Update(msg)
			return m, cmd
		}
		if key.Matches(msg, m.keys.Quit) && !m.listView.Filtering() {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	if m.active == screenPlayback {
		m.playView, cmd = m.playView.Update(msg)
	} else {
		m.listView, cmd = m.listView.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var body string
	if m.active == screenPlayback {
		body = lipgloss.Place(m.width, max(0, m.height-2), lipgloss.Center, lipgloss.Center, m.playView.View())
	} else {
		body = m.listView.View()
	}
	status := theme.Muted.Render("intervals")
	if m.status != "" {
		status += "  " + theme.Hot.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}
