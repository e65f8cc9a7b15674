package out

import (
	"context"
	"fmt"

	"intervals/internal/modules/peersync/domain"
	syncout "intervals/internal/modules/peersync/port/out"
	workoutdto "intervals/internal/modules/workout/dto"
	workoutin "intervals/internal/modules/workout/port/in"
	apperrors "intervals/internal/platform/errors"
)

// WorkoutCatalog reads and writes the local workout collection through the
// workout module.
type WorkoutCatalog struct {
	workouts workoutin.Usecase
}

func NewWorkoutCatalog(workouts workoutin.Usecase) syncout.Catalog {
	return &WorkoutCatalog{workouts: workouts}
}

// Export returns the workouts with the given ids in that order, or every
// stored workout when ids is empty.
func (c *WorkoutCatalog) Export(ctx context.Context, ids []string) ([]domain.WorkoutRecord, error) {
	if len(ids) == 0 {
		all, err := c.workouts.List(ctx, workoutdto.ListInput{})
		if err != nil {
			return nil, err
		}
		out := make([]domain.WorkoutRecord, 0, len(all))
		for _, workout := range all {
			out = append(out, toRecord(workout))
		}
		return out, nil
	}
	out := make([]domain.WorkoutRecord, 0, len(ids))
	for _, id := range ids {
		workout, err := c.workouts.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("export workout %s: %w", id, err)
		}
		out = append(out, toRecord(workout))
	}
	return out, nil
}

func (c *WorkoutCatalog) Import(ctx context.Context, workouts []domain.WorkoutRecord, merge string) (int, error) {
	if len(workouts) == 0 {
		return 0, nil
	}
	input := workoutdto.ImportInput{Merge: merge, Workouts: make([]workoutdto.WorkoutInput, 0, len(workouts))}
	for _, record := range workouts {
		if record.ID == "" {
			return 0, fmt.Errorf("%w: workout record without id", apperrors.ErrInvalidInput)
		}
		in := workoutdto.WorkoutInput{ID: record.ID, Name: record.Name, Intervals: make([]workoutdto.IntervalInput, 0, len(record.Intervals))}
		for _, interval := range record.Intervals {
			in.Intervals = append(in.Intervals, workoutdto.IntervalInput{ID: interval.ID, Type: interval.Type, Duration: interval.Duration})
		}
		input.Workouts = append(input.Workouts, in)
	}
	out, err := c.workouts.Import(ctx, input)
	if err != nil {
		return 0, err
	}
	return out.Imported, nil
}

func toRecord(workout workoutdto.WorkoutOutput) domain.WorkoutRecord {
	record := domain.WorkoutRecord{ID: workout.ID, Name: workout.Name, Intervals: make([]domain.IntervalRecord, 0, len(workout.Intervals))}
	for _, interval := range workout.Intervals {
		record.Intervals = append(record.Intervals, domain.IntervalRecord{ID: interval.ID, Type: interval.Type, Duration: interval.Duration})
	}
	return record
}
