package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"intervals/internal/bootstrap"
	peersyncdto "intervals/internal/modules/peersync/dto"
	workoutdto "intervals/internal/modules/workout/dto"
	"intervals/internal/platform/config"
	"intervals/internal/platform/logging"
	"intervals/internal/platform/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataPath   string
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "intervals",
		Short:         "Interval training workouts with peer sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataPath, "data", ".", "data directory")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <data>/.intervals/config.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override: trace|debug|info|warn|error|off")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newWorkoutCmd(flags))
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newSyncCmd(flags))
	root.AddCommand(newDeviceCmd(flags))
	root.AddCommand(newReindexCmd(flags))
	return root
}

// loadApp wires the application. Full-screen commands pass a nil logOutput
// so logs go to <data>/.intervals/intervals.log instead of the terminal.
func loadApp(flags *globalFlags, logOutput io.Writer, bell io.Writer) (*bootstrap.App, error) {
	cfg, err := config.New(flags.dataPath, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		if cfg, err = cfg.WithLogLevel(flags.logLevel); err != nil {
			return nil, err
		}
	}
	if logOutput == nil {
		if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
		file, err := os.OpenFile(filepath.Join(cfg.StateDir, "intervals.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logOutput = file
	}
	return bootstrap.New(cfg, logging.New(cfg.Log.Level, logOutput), bootstrap.Options{BellOutput: bell})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	var listen bool
	var speed float64
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse and play workouts in the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app, listen, speed)
		},
	}
	cmd.Flags().BoolVar(&listen, "listen", false, "accept workouts from the paired device while open")
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed factor")
	return cmd
}

type planFlags struct {
	name     string
	rounds   int
	high     float64
	low      float64
	warmup   float64
	cooldown float64
}

func (p *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.name, "name", "", "workout name")
	cmd.Flags().IntVar(&p.rounds, "rounds", 5, "number of high/low rounds")
	cmd.Flags().Float64Var(&p.high, "high", 30, "high intensity seconds")
	cmd.Flags().Float64Var(&p.low, "low", 30, "low intensity seconds")
	cmd.Flags().Float64Var(&p.warmup, "warmup", 300, "warm-up seconds (0 to skip)")
	cmd.Flags().Float64Var(&p.cooldown, "cooldown", 300, "cool-down seconds (0 to skip)")
}

func (p *planFlags) input() workoutdto.PlanInput {
	return workoutdto.PlanInput{
		Name:          p.name,
		Rounds:        p.rounds,
		HighIntensity: p.high,
		LowIntensity:  p.low,
		Warmup:        p.warmup,
		CoolDown:      p.cooldown,
	}
}

// overlay keeps the stored value for every flag the user did not set.
func (p *planFlags) overlay(cmd *cobra.Command, stored workoutdto.PlanInput) workoutdto.PlanInput {
	out := stored
	if cmd.Flags().Changed("name") {
		out.Name = p.name
	}
	if cmd.Flags().Changed("rounds") {
		out.Rounds = p.rounds
	}
	if cmd.Flags().Changed("high") {
		out.HighIntensity = p.high
	}
	if cmd.Flags().Changed("low") {
		out.LowIntensity = p.low
	}
	if cmd.Flags().Changed("warmup") {
		out.Warmup = p.warmup
	}
	if cmd.Flags().Changed("cooldown") {
		out.CoolDown = p.cooldown
	}
	return out
}

func newWorkoutCmd(flags *globalFlags) *cobra.Command {
	workout := &cobra.Command{Use: "workout", Short: "Author and manage workouts"}

	var create planFlags
	createCmd := &cobra.Command{
		Use:   "create --name <name>",
		Short: "Generate and store a workout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(create.name) == "" {
				return fmt.Errorf("--name is required")
			}
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.WorkoutCLI.Create(context.Background(), create.input())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s, %s\n", out.Name, out.ID, out.Summary, out.TotalDuration)
			return nil
		},
	}
	create.register(createCmd)

	var sample bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored workouts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			workouts, err := app.WorkoutCLI.List(context.Background(), sample)
			if err != nil {
				return err
			}
			if len(workouts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no workouts")
				return nil
			}
			for _, w := range workouts {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", w.ID, w.Name, w.Summary, w.TotalDuration)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&sample, "sample", false, "show the example workout when none are stored")

	var asJSON bool
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a workout and its intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			w, err := app.WorkoutCLI.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(w)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nname: %s\nsummary: %s\ntotal: %s\n", w.ID, w.Name, w.Summary, w.TotalDuration)
			for idx, interval := range w.Intervals {
				round := ""
				if interval.Round > 0 {
					round = fmt.Sprintf(" round=%d", interval.Round)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-14s %6.0fs%s\n", idx+1, interval.Name, interval.Duration, round)
			}
			return nil
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	var edit planFlags
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Regenerate a workout's intervals, keeping its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			stored, err := app.WorkoutCLI.GetPlan(context.Background(), args[0])
			if err != nil {
				return err
			}
			out, err := app.WorkoutCLI.Edit(context.Background(), args[0], edit.overlay(cmd, stored.Plan))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s) %s, %s\n", out.Name, out.ID, out.Summary, out.TotalDuration)
			return nil
		},
	}
	edit.register(editCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete workouts from this device",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			for _, workoutID := range args {
				if err := app.WorkoutCLI.Delete(context.Background(), workoutID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", workoutID)
			}
			return nil
		},
	}

	deleteAllCmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every workout on this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.WorkoutCLI.DeleteAll(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "all workouts deleted")
			return nil
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search workouts by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			listings, err := app.WorkoutCLI.Search(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(listings) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, l := range listings {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Summary, l.TotalDuration)
			}
			return nil
		},
	}

	workout.AddCommand(createCmd, listCmd, showCmd, editCmd, deleteCmd, deleteAllCmd, searchCmd)
	return workout
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var speed float64
	var plain bool
	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Play a workout as a live countdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plain {
				app, err := loadApp(flags, nil, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer app.Close()
				return bootstrap.RunPlayback(app, args[0], speed)
			}

			app, err := loadApp(flags, os.Stderr, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signalContext()
			defer stop()
			playback, err := app.PlaybackCLI.Start(ctx, args[0], speed)
			if err != nil {
				return err
			}
			info := playback.Workout()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %s\n", info.Name, info.Summary, info.TotalDuration)
			lastIndex := -1
			for frame := range playback.Frames() {
				if frame.Index != lastIndex && !frame.Finished {
					line := fmt.Sprintf("[%d/%d] %s %s", frame.Index+1, frame.Count, frame.Name, frame.Clock)
					if frame.RoundLabel != "" {
						line += " (" + frame.RoundLabel + ")"
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
					lastIndex = frame.Index
				}
			}
			final := playback.Final()
			if !final.Finished {
				return fmt.Errorf("playback stopped at interval %d/%d", final.Index+1, final.Count)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "workout complete")
			return nil
		},
	}
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed factor")
	cmd.Flags().BoolVar(&plain, "plain", false, "print interval changes instead of the full-screen view")
	return cmd
}

func newSyncCmd(flags *globalFlags) *cobra.Command {
	sync := &cobra.Command{Use: "sync", Short: "Exchange workouts with the paired device"}

	sync.AddCommand(&cobra.Command{
		Use:   "push [id...]",
		Short: "Send workouts to the paired device (all when no ids are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signalContext()
			defer stop()
			out, err := app.SyncCLI.Push(ctx, args)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sent %d workout(s) state=%s\n", out.Sent, out.Status.State)
			return nil
		},
	})

	var metricsAddr string
	listen := &cobra.Command{
		Use:   "listen",
		Short: "Accept workouts from the paired device until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signalContext()
			defer stop()

			if metricsAddr != "" {
				srv := serveMetrics(metricsAddr, app.Logger)
				defer shutdownMetrics(srv, app.Logger)
			}

			out := cmd.OutOrStdout()
			err = app.SyncCLI.Listen(ctx,
				func(status peersyncdto.StatusOutput) {
					_, _ = fmt.Fprintln(out, "listening on:")
					for _, addr := range status.ListenAddrs {
						_, _ = fmt.Fprintln(out, "  "+addr)
					}
				},
				func(received peersyncdto.ReceivedOutput) {
					_, _ = fmt.Fprintf(out, "%s received %d workout(s)\n", time.Now().Format(time.Kitchen), len(received.Workouts))
					for _, w := range received.Workouts {
						_, _ = fmt.Fprintf(out, "  %s\t%s\t%d intervals\n", w.ID, w.Name, w.IntervalCount)
					}
				},
			)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	listen.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	sync.AddCommand(listen)
	return sync
}

func serveMetrics(addr string, logger hclog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return srv
}

func shutdownMetrics(srv *http.Server, logger hclog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics shutdown error", "error", err)
	}
}

func newDeviceCmd(flags *globalFlags) *cobra.Command {
	device := &cobra.Command{Use: "device", Short: "Device identity and pairing"}

	device.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create this device's sync identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SyncCLI.DeviceInit(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "device initialized: %s\n", out.PeerID)
			return nil
		},
	})

	device.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the device identity and pairing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SyncCLI.DeviceShow(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "peer_id: %s\ncreated: %s\n", out.PeerID, out.CreatedAt.Format(time.RFC3339))
			if out.Paired {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "paired: %s\naddress: %s\n", out.PairedPeerID, out.PairedAddress)
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "paired: no")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "run `intervals sync listen` to print dialable addresses")
			return nil
		},
	})

	device.AddCommand(&cobra.Command{
		Use:   "pair <multiaddr>",
		Short: "Pair with the device listening at a /p2p/ multiaddr",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SyncCLI.Pair(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "paired with %s %s\n", out.PeerID, out.Address)
			return nil
		},
	})

	device.AddCommand(&cobra.Command{
		Use:   "unpair",
		Short: "Forget the paired device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.SyncCLI.Unpair(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "unpaired")
			return nil
		},
	})
	return device
}

func newReindexCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite workout index from the workout file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.WorkoutCLI.Reindex(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
			return nil
		},
	}
}
