package playback

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	playbackdto "intervals/internal/modules/playback/dto"
	playbackin "intervals/internal/modules/playback/port/in"
	"intervals/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Start(ctx context.Context, workoutID string, speed float64) (playbackin.Playback, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type startedMsg struct {
	playback playbackin.Playback
	err      error
}

type frameMsg struct {
	frame playbackdto.Frame
	ok    bool
}

// FinishedMsg is sent once playback ends, whether it completed or was stopped.
type FinishedMsg struct {
	WorkoutID string
	Final     playbackdto.Frame
	Err       error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port      Port
	workoutID string
	speed     float64
	// quit the program when playback ends
	standalone bool

	playback playbackin.Playback
	info     playbackdto.WorkoutInfo
	frame    playbackdto.Frame
	bar      progress.Model
	done     bool
	err      error
	width    int
	height   int
}

func New(port Port, workoutID string, speed float64, standalone bool) Model {
	bar := progress.New(progress.WithSolidFill(string(theme.Lavender)), progress.WithoutPercentage())
	return Model{port: port, workoutID: workoutID, speed: speed, standalone: standalone, bar: bar}
}

func (m Model) Init() tea.Cmd {
	return m.startCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bar.Width = max(10, min(60, msg.Width-8))

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, m.finish(playbackdto.Frame{})
		}
		m.playback = msg.playback
		m.info = msg.playback.Workout()
		return m, waitFrame(msg.playback)

	case frameMsg:
		if !msg.ok {
			m.done = true
			final := m.playback.Final()
			m.frame = final
			return m, m.finish(final)
		}
		m.frame = msg.frame
		return m, waitFrame(m.playback)

	case FinishedMsg:
		if m.standalone {
			return m, tea.Quit
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.playback != nil && !m.done {
				m.playback.Stop()
				return m, nil
			}
			if m.standalone {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return theme.Error.Render("playback failed: " + m.err.Error())
	}
	if m.playback == nil {
		return theme.Muted.Render("Loading workout…")
	}
	f := m.frame
	accent := theme.IntervalColor(f.Type)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(m.info.Name) + "  " + theme.Muted.Render(m.info.Summary) + "\n\n")

	phase := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(strings.ToUpper(f.Name))
	sb.WriteString(phase)
	if f.RoundLabel != "" {
		sb.WriteString("  " + theme.Muted.Render(f.RoundLabel))
	}
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(accent).Bold(true).Render(f.Clock) + "\n")
	sb.WriteString(m.bar.ViewAs(f.Progress) + "\n\n")

	sb.WriteString(theme.Muted.Render(fmt.Sprintf("interval %d/%d  elapsed %s / %s",
		f.Index+1, f.Count, clock(f.Elapsed), clock(f.Total))))
	if f.HeartRate > 0 {
		sb.WriteString("  " + theme.Hot.Render(fmt.Sprintf("♥ %.0f", f.HeartRate)))
	}
	sb.WriteString("\n\n")
	switch {
	case f.Finished:
		sb.WriteString(theme.Hot.Render("Workout complete") + "\n")
	case m.done:
		sb.WriteString(theme.Muted.Render("Stopped") + "\n")
	default:
		sb.WriteString(theme.Muted.Render("q: stop") + "\n")
	}
	return theme.Pane.BorderForeground(accent).Render(sb.String())
}

// Done reports whether playback has ended.
func (m Model) Done() bool {
	return m.done
}

// Stop ends playback; it is a no-op once playback has ended.
func (m Model) Stop() {
	if m.playback != nil && !m.done {
		m.playback.Stop()
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.port.Start(context.Background(), m.workoutID, m.speed)
		return startedMsg{playback: p, err: err}
	}
}

func waitFrame(p playbackin.Playback) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-p.Frames()
		return frameMsg{frame: frame, ok: ok}
	}
}

func (m Model) finish(final playbackdto.Frame) tea.Cmd {
	id, err := m.workoutID, m.err
	return func() tea.Msg {
		return FinishedMsg{WorkoutID: id, Final: final, Err: err}
	}
}

func clock(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
