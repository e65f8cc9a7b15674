package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"intervals/internal/modules/playback/dto"
	"intervals/internal/modules/playback/service"
	"intervals/internal/modules/playback/usecase"
	workoutdto "intervals/internal/modules/workout/dto"
	workoutin "intervals/internal/modules/workout/port/in"
	apperrors "intervals/internal/platform/errors"
)

type stubWorkouts struct {
	workoutin.Usecase
	workouts map[string]workoutdto.WorkoutOutput
}

func (s stubWorkouts) Get(_ context.Context, id string) (workoutdto.WorkoutOutput, error) {
	w, ok := s.workouts[id]
	if !ok {
		return workoutdto.WorkoutOutput{}, apperrors.ErrNotFound
	}
	return w, nil
}

func newPlayback(t *testing.T) *usecase.Interactor {
	t.Helper()
	store := stubWorkouts{workouts: map[string]workoutdto.WorkoutOutput{
		"w1": {
			ID: "w1", Name: "Quick", Summary: "Warmup + 1 rounds + Cooldown", TotalDuration: "4 sec", Rounds: 1,
			Intervals: []workoutdto.IntervalOutput{
				{ID: "a", Type: "warmup", Name: "Warm-up", Duration: 1},
				{ID: "b", Type: "highIntensity", Name: "High Intensity", Duration: 1, Round: 1},
				{ID: "c", Type: "lowIntensity", Name: "Low Intensity", Duration: 1, Round: 1},
				{ID: "d", Type: "coolDown", Name: "Cool Down", Duration: 1},
			},
		},
		"empty": {ID: "empty", Name: "Empty"},
	}}
	svc := service.NewPlaybackService(store, nil, nil, time.Millisecond, nil)
	return usecase.NewInteractor(svc).(*usecase.Interactor)
}

func TestStartPlaysStoredWorkout(t *testing.T) {
	t.Parallel()
	uc := newPlayback(t)
	p, err := uc.Start(context.Background(), dto.StartInput{WorkoutID: "w1", Speed: 250})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if info := p.Workout(); info.Name != "Quick" || info.Intervals != 4 || info.Rounds != 1 {
		t.Fatalf("unexpected workout info: %+v", info)
	}
	var last dto.Frame
	timeout := time.After(5 * time.Second)
loop:
	for {
		select {
		case frame, ok := <-p.Frames():
			if !ok {
				break loop
			}
			last = frame
		case <-timeout:
			t.Fatal("playback never finished")
		}
	}
	if !last.Finished || last.Clock != "0:00" {
		t.Fatalf("unexpected final frame: %+v", last)
	}
	<-p.Done()
	if !p.Final().Finished {
		t.Fatal("final frame must be finished")
	}
}

func TestStartRejectsUnknownAndEmptyWorkouts(t *testing.T) {
	t.Parallel()
	uc := newPlayback(t)
	ctx := context.Background()
	if _, err := uc.Start(ctx, dto.StartInput{WorkoutID: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing workout = %v", err)
	}
	if _, err := uc.Start(ctx, dto.StartInput{WorkoutID: " "}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("blank id = %v", err)
	}
	if _, err := uc.Start(ctx, dto.StartInput{WorkoutID: "empty"}); err == nil {
		t.Fatal("a workout without intervals cannot play")
	}
}
