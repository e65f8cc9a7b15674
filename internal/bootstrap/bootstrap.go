package bootstrap

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	peersyncinadapter "intervals/internal/modules/peersync/adapter/in"
	peersyncoutadapter "intervals/internal/modules/peersync/adapter/out"
	peersyncdto "intervals/internal/modules/peersync/dto"
	peersyncservice "intervals/internal/modules/peersync/service"
	peersyncusecase "intervals/internal/modules/peersync/usecase"
	playbackinadapter "intervals/internal/modules/playback/adapter/in"
	playbackoutadapter "intervals/internal/modules/playback/adapter/out"
	playbackout "intervals/internal/modules/playback/port/out"
	playbackservice "intervals/internal/modules/playback/service"
	playbackusecase "intervals/internal/modules/playback/usecase"
	workoutinadapter "intervals/internal/modules/workout/adapter/in"
	workoutoutadapter "intervals/internal/modules/workout/adapter/out"
	workoutservice "intervals/internal/modules/workout/service"
	workoutusecase "intervals/internal/modules/workout/usecase"
	"intervals/internal/platform/clock"
	"intervals/internal/platform/config"
	"intervals/internal/platform/id"
	uiapp "intervals/internal/ui/app"
	playbackview "intervals/internal/ui/views/playback"
)

type App struct {
	Config      config.Config
	Logger      hclog.Logger
	WorkoutCLI  workoutinadapter.CLIHandler
	SyncCLI     peersyncinadapter.CLIHandler
	PlaybackCLI playbackinadapter.CLIHandler

	index *workoutoutadapter.SQLiteWorkoutIndex
}

// Options control the parts of the wiring that depend on how the process
// was started.
type Options struct {
	// BellOutput receives terminal bell cues; nil disables them.
	BellOutput io.Writer
}

func New(cfg config.Config, logger hclog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}

	index, err := workoutoutadapter.NewSQLiteWorkoutIndex(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new workout index: %w", err)
	}
	workoutUC := workoutusecase.NewInteractor(workoutservice.NewWorkoutService(
		clk,
		ids,
		workoutoutadapter.NewFileWorkoutStore(cfg.StateDir, logger),
		index,
		logger,
	))

	syncUC := peersyncusecase.NewInteractor(peersyncservice.NewSyncService(
		peersyncoutadapter.NewLibp2pTransport(logger),
		peersyncoutadapter.NewFileDeviceStore(cfg.StateDir, clk, logger),
		peersyncoutadapter.NewWorkoutCatalog(workoutUC),
		peersyncservice.Settings{
			SendTimeout: cfg.Sync.SendTimeout,
			Merge:       cfg.Sync.Merge,
			ListenAddrs: cfg.Sync.ListenAddrs,
		},
		clk,
		logger,
	))

	notifiers := []playbackout.Notifier{}
	if cfg.Playback.Bell && opts.BellOutput != nil {
		notifiers = append(notifiers, playbackoutadapter.NewBellNotifier(opts.BellOutput))
	}
	if cfg.Playback.Sound {
		notifiers = append(notifiers, playbackoutadapter.NewToneNotifier(logger))
	}
	playbackUC := playbackusecase.NewInteractor(playbackservice.NewPlaybackService(
		workoutUC,
		playbackoutadapter.NewFanout(notifiers...),
		playbackoutadapter.NullHeartRateFeed{},
		cfg.Playback.Tick,
		logger,
	))

	return &App{
		Config:      cfg,
		Logger:      logger,
		WorkoutCLI:  workoutinadapter.NewCLIHandler(workoutUC),
		SyncCLI:     peersyncinadapter.NewCLIHandler(syncUC),
		PlaybackCLI: playbackinadapter.NewCLIHandler(playbackUC),
		index:       index,
	}, nil
}

func (a *App) Close() error {
	if a.index == nil {
		return nil
	}
	return a.index.Close()
}

// RunTUI opens the workout browser. With listen set the device also accepts
// workouts from its peer and refreshes the listing when a batch arrives.
func RunTUI(app *App, listen bool, speed float64) error {
	model := uiapp.NewModel(app.WorkoutCLI, app.PlaybackCLI, true, speed)
	program := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if listen {
		go func() {
			err := app.SyncCLI.Listen(ctx, nil, func(received peersyncdto.ReceivedOutput) {
				program.Send(uiapp.WorkoutsReceivedMsg{Count: len(received.Workouts)})
			})
			if err != nil && ctx.Err() == nil {
				app.Logger.Warn("sync listener stopped", "error", err)
			}
		}()
	}
	_, err := program.Run()
	return err
}

// RunPlayback plays one workout full screen and returns once it ends.
func RunPlayback(app *App, workoutID string, speed float64) error {
	model := playbackStandalone{inner: playbackview.New(app.PlaybackCLI, workoutID, speed, true)}
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(playbackStandalone); ok && m.err != nil {
		return m.err
	}
	return nil
}

// playbackStandalone adapts the playback view to tea.Model.
type playbackStandalone struct {
	inner playbackview.Model
	err   error
}

func (m playbackStandalone) Init() tea.Cmd { return m.inner.Init() }

func (m playbackStandalone) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if finished, ok := msg.(playbackview.FinishedMsg); ok && finished.Err != nil {
		m.err = finished.Err
	}
	var cmd tea.Cmd
	m.inner, cmd = m.inner.Update(msg)
	return m, cmd
}

func (m playbackStandalone) View() string { return m.inner.View() }
