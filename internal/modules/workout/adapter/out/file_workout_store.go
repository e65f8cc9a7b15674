package out

import (
	hclog "github.com/hashicorp/go-hclog"

	"intervals/internal/modules/workout/domain"
	workoutout "intervals/internal/modules/workout/port/out"
	"intervals/internal/platform/filestore"
)

const WorkoutsFileName = "workouts.json"

var workoutKind = filestore.Kind{Name: "workouts", FileName: WorkoutsFileName}

// NewFileWorkoutStore keeps workouts in <stateDir>/workouts.json.
func NewFileWorkoutStore(stateDir string, logger hclog.Logger) workoutout.WorkoutStore {
	return filestore.New[domain.Workout](stateDir, workoutKind, filestore.JSONCodec[domain.Workout]{}, logger)
}
