package in

import (
	"context"

	"intervals/internal/modules/playback/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (Playback, error)
}

// Playback is one running workout. Frames is closed when it finishes or is
// stopped.
type Playback interface {
	Workout() dto.WorkoutInfo
	Frames() <-chan dto.Frame
	Stop()
	Done() <-chan struct{}
	Final() dto.Frame
}
