package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"intervals/internal/modules/playback/domain"
	playbackout "intervals/internal/modules/playback/port/out"
	workoutdto "intervals/internal/modules/workout/dto"
	workoutin "intervals/internal/modules/workout/port/in"
	apperrors "intervals/internal/platform/errors"
)

type PlaybackService struct {
	workouts workoutin.Usecase
	notifier playbackout.Notifier
	feed     playbackout.HeartRateFeed
	tick     time.Duration
	logger   hclog.Logger
}

func NewPlaybackService(workouts workoutin.Usecase, notifier playbackout.Notifier, feed playbackout.HeartRateFeed, tick time.Duration, logger hclog.Logger) *PlaybackService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PlaybackService{workouts: workouts, notifier: notifier, feed: feed, tick: tick, logger: logger}
}

// Prepare loads the stored workout and returns a runner ready to start.
func (s *PlaybackService) Prepare(ctx context.Context, workoutID string, speed float64) (*Runner, workoutdto.WorkoutOutput, error) {
	workoutID = strings.TrimSpace(workoutID)
	if workoutID == "" {
		return nil, workoutdto.WorkoutOutput{}, fmt.Errorf("%w: workout id is required", apperrors.ErrInvalidInput)
	}
	if speed < 0 {
		return nil, workoutdto.WorkoutOutput{}, fmt.Errorf("%w: speed must not be negative", apperrors.ErrInvalidInput)
	}
	workout, err := s.workouts.Get(ctx, workoutID)
	if err != nil {
		return nil, workoutdto.WorkoutOutput{}, err
	}
	runner := NewRunner(domain.NewEngine(PhasesOf(workout)), RunnerOptions{
		Tick:     s.tick,
		Speed:    speed,
		Notifier: s.notifier,
		Feed:     s.feed,
		Logger:   s.logger.With("workout", workout.ID),
	})
	return runner, workout, nil
}

// PhasesOf keeps the stored interval order as the playback order.
func PhasesOf(workout workoutdto.WorkoutOutput) []domain.Phase {
	phases := make([]domain.Phase, 0, len(workout.Intervals))
	for _, interval := range workout.Intervals {
		phases = append(phases, domain.Phase{
			IntervalID: interval.ID,
			Type:       interval.Type,
			Name:       interval.Name,
			Duration:   interval.Duration,
			Round:      interval.Round,
		})
	}
	return phases
}
