package usecase

import (
	"context"

	"intervals/internal/modules/playback/domain"
	"intervals/internal/modules/playback/dto"
	playbackin "intervals/internal/modules/playback/port/in"
	"intervals/internal/modules/playback/service"
)

type Interactor struct {
	svc *service.PlaybackService
}

func NewInteractor(svc *service.PlaybackService) playbackin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (playbackin.Playback, error) {
	runner, workout, err := i.svc.Prepare(ctx, input.WorkoutID, input.Speed)
	if err != nil {
		return nil, err
	}
	snapshots, err := runner.Start(ctx)
	if err != nil {
		return nil, err
	}
	p := &playback{
		runner: runner,
		frames: make(chan dto.Frame, 1),
		info: dto.WorkoutInfo{
			ID:            workout.ID,
			Name:          workout.Name,
			Summary:       workout.Summary,
			TotalDuration: workout.TotalDuration,
			Intervals:     len(workout.Intervals),
			Rounds:        workout.Rounds,
		},
	}
	go p.forward(snapshots)
	return p, nil
}

type playback struct {
	runner *service.Runner
	frames chan dto.Frame
	info   dto.WorkoutInfo
}

func (p *playback) forward(snapshots <-chan domain.Snapshot) {
	defer close(p.frames)
	for snap := range snapshots {
		frame := toFrame(snap)
		select {
		case p.frames <- frame:
			continue
		default:
		}
		// keep only the newest frame for slow readers
		select {
		case <-p.frames:
		default:
		}
		p.frames <- frame
	}
}

func (p *playback) Workout() dto.WorkoutInfo { return p.info }
func (p *playback) Frames() <-chan dto.Frame { return p.frames }
func (p *playback) Stop() { p.runner.Stop() }
func (p *playback) Done() <-chan struct{} { return p.runner.Done() }
func (p *playback) Final() dto.Frame { return toFrame(p.runner.Final()) }

func toFrame(s domain.Snapshot) dto.Frame {
	return dto.Frame{
		Index:      s.Index,
		Count:      s.Count,
		Type:       s.Type,
		Name:       s.Name,
		RoundLabel: s.RoundLabel(),
		Clock:      s.Clock(),
		Remaining:  s.Remaining,
		Progress:   s.Progress,
		Elapsed:    s.Elapsed,
		Total:      s.Total,
		HeartRate:  s.HeartRate,
		Running:    s.Running,
		Finished:   s.Finished,
	}
}
