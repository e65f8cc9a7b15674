package workouts

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	workoutdto "intervals/internal/modules/workout/dto"
	"intervals/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	List(ctx context.Context, sampleWhenEmpty bool) ([]workoutdto.WorkoutOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Workouts []workoutdto.WorkoutOutput
	Err      error
}

// ReloadMsg asks the view to load the listing again, for example after a
// sync delivered new workouts.
type ReloadMsg struct {
	Reason string
}

type PlayMsg struct {
	WorkoutID string
}

// ─── list item ───────────────────────────────────────────────────────────────

type workoutItem struct {
	workout workoutdto.WorkoutOutput
}

func (i workoutItem) Title() string { return i.workout.Name }
func (i workoutItem) Description() string {
	return fmt.Sprintf("%s  %s", i.workout.Summary, i.workout.TotalDuration)
}
func (i workoutItem) FilterValue() string { return i.workout.Name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port            Port
	sampleWhenEmpty bool
	list            list.Model
	preview         viewport.Model
	spinner         spinner.Model
	loading         bool
	notice          string
	width           int
	height          int
}

func New(port Port, sampleWhenEmpty bool) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Workouts"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:            port,
		sampleWhenEmpty: sampleWhenEmpty,
		list:            l,
		preview:         vp,
		spinner:         sp,
		loading:         true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ReloadMsg:
		m.notice = msg.Reason
		return m, m.loadCmd()

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Workouts: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Workouts"
		items := make([]list.Item, len(msg.Workouts))
		for i, w := range msg.Workouts {
			items[i] = workoutItem{workout: w}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case tea.KeyMsg:
		if !m.loading && !m.Filtering() {
			switch msg.String() {
			case "enter":
				if item, ok := m.list.SelectedItem().(workoutItem); ok {
					id := item.workout.ID
					return m, func() tea.Msg { return PlayMsg{WorkoutID: id} }
				}
			case "r":
				m.notice = ""
				return m, m.loadCmd()
			}
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading workouts…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(workoutItem)
	if !ok {
		return theme.Muted.Render("No workouts yet. Create one with `intervals workout create`.")
	}
	w := item.workout
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(w.Name) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + w.ID + "\n")
	sb.WriteString(theme.Muted.Render("summary:  ") + w.Summary + "\n")
	sb.WriteString(theme.Muted.Render("total:    ") + w.TotalDuration + "\n\n")
	for idx, interval := range w.Intervals {
		name := lipgloss.NewStyle().Foreground(theme.IntervalColor(interval.Type)).Render(interval.Name)
		line := fmt.Sprintf("%2d. %s  %.0fs", idx+1, name, interval.Duration)
		if interval.Round > 0 {
			line += theme.Muted.Render(fmt.Sprintf("  round %d", interval.Round))
		}
		sb.WriteString(line + "\n")
	}
	if m.notice != "" {
		sb.WriteString("\n" + theme.Hot.Render(m.notice) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: play  r: reload  /: filter  q: quit"))
	return sb.String()
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		workouts, err := m.port.List(context.Background(), m.sampleWhenEmpty)
		return LoadedMsg{Workouts: workouts, Err: err}
	}
}
