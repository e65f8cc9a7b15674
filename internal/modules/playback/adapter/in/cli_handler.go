package in

import (
	"context"

	"intervals/internal/modules/playback/dto"
	playbackin "intervals/internal/modules/playback/port/in"
)

type CLIHandler struct {
	usecase playbackin.Usecase
}

func NewCLIHandler(usecase playbackin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, workoutID string, speed float64) (playbackin.Playback, error) {
	return h.usecase.Start(ctx, dto.StartInput{WorkoutID: workoutID, Speed: speed})
}
