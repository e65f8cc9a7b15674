package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"intervals/internal/modules/workout/domain"
	workoutout "intervals/internal/modules/workout/port/out"
	"intervals/internal/platform/clock"
	apperrors "intervals/internal/platform/errors"
	"intervals/internal/platform/id"
)

type MergeMode string

const (
	MergeAppend MergeMode = "append"
	MergeUpsert MergeMode = "upsert"
)

func (m MergeMode) Validate() error {
	switch m {
	case MergeAppend, MergeUpsert:
		return nil
	default:
		return fmt.Errorf("%w: unsupported merge mode %q", apperrors.ErrInvalidInput, string(m))
	}
}

type WorkoutService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  workoutout.WorkoutStore
	index  workoutout.WorkoutIndex
	logger hclog.Logger
}

// NewWorkoutService wires the service. index may be nil, in which case
// listings are not projected and Search is unavailable.
func NewWorkoutService(clock clock.Clock, idGen id.Generator, store workoutout.WorkoutStore, index workoutout.WorkoutIndex, logger hclog.Logger) *WorkoutService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &WorkoutService{clock: clock, idGen: idGen, store: store, index: index, logger: logger.Named("workout")}
}

func (s *WorkoutService) Create(ctx context.Context, plan domain.Plan) (domain.Workout, error) {
	workout, err := domain.Generate(s.idGen, plan)
	if err != nil {
		return domain.Workout{}, err
	}
	if err := s.store.Add(ctx, workout); err != nil {
		return domain.Workout{}, err
	}
	s.project(ctx, workout)
	s.logger.Info("workout created", "id", workout.ID, "intervals", len(workout.Intervals))
	return workout, nil
}

// Edit regenerates the intervals of an existing workout from a new plan and
// keeps its id.
func (s *WorkoutService) Edit(ctx context.Context, workoutID string, plan domain.Plan) (domain.Workout, error) {
	if _, err := s.Get(ctx, workoutID); err != nil {
		return domain.Workout{}, err
	}
	if err := plan.Validate(); err != nil {
		return domain.Workout{}, err
	}
	workout := domain.Workout{ID: workoutID, Name: strings.TrimSpace(plan.Name), Intervals: plan.Intervals(s.idGen)}
	if err := workout.Validate(); err != nil {
		return domain.Workout{}, err
	}
	updated, err := s.store.Update(ctx, workout)
	if err != nil {
		return domain.Workout{}, err
	}
	if !updated {
		return domain.Workout{}, fmt.Errorf("%w: workout %s", apperrors.ErrNotFound, workoutID)
	}
	s.project(ctx, workout)
	return workout, nil
}

// Get returns a stored workout. While the store is empty the sample id
// resolves to the sample workout, matching what List shows.
func (s *WorkoutService) Get(ctx context.Context, workoutID string) (domain.Workout, error) {
	workout, ok, err := s.store.Get(ctx, workoutID)
	if err != nil {
		return domain.Workout{}, err
	}
	if ok {
		return workout, nil
	}
	if workoutID == domain.SampleID {
		stored, err := s.store.Load(ctx)
		if err != nil {
			return domain.Workout{}, err
		}
		if len(stored) == 0 {
			return domain.Sample(s.idGen), nil
		}
	}
	return domain.Workout{}, fmt.Errorf("%w: workout %s", apperrors.ErrNotFound, workoutID)
}

// List returns the stored workouts. With sampleWhenEmpty an empty store
// yields the sample workout instead. A degraded store is reported as an
// error and no sample is substituted.
func (s *WorkoutService) List(ctx context.Context, sampleWhenEmpty bool) ([]domain.Workout, error) {
	workouts, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 && sampleWhenEmpty {
		return []domain.Workout{domain.Sample(s.idGen)}, nil
	}
	return workouts, nil
}

func (s *WorkoutService) Delete(ctx context.Context, workoutID string) error {
	if err := s.store.Delete(ctx, domain.Workout{ID: workoutID}); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteListing(ctx, workoutID); err != nil {
			s.logger.Warn("index delete failed", "id", workoutID, "error", err)
		}
	}
	return nil
}

func (s *WorkoutService) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Reset(ctx); err != nil {
			s.logger.Warn("index reset failed", "error", err)
		}
	}
	return nil
}

// Import stores workouts received from elsewhere. They keep their ids.
// Append adds them as given; upsert replaces entries with matching ids.
func (s *WorkoutService) Import(ctx context.Context, workouts []domain.Workout, mode MergeMode) (int, error) {
	if err := mode.Validate(); err != nil {
		return 0, err
	}
	for _, workout := range workouts {
		if err := workout.Validate(); err != nil {
			return 0, err
		}
	}
	if len(workouts) == 0 {
		return 0, nil
	}
	var err error
	switch mode {
	case MergeAppend:
		err = s.store.AddAll(ctx, workouts)
	case MergeUpsert:
		err = s.store.Upsert(ctx, workouts)
	}
	if err != nil {
		return 0, err
	}
	for _, workout := range workouts {
		s.project(ctx, workout)
	}
	s.logger.Info("workouts imported", "count", len(workouts), "merge", string(mode))
	return len(workouts), nil
}

func (s *WorkoutService) Search(ctx context.Context, query string) ([]domain.Listing, error) {
	if s.index == nil {
		return nil, errors.New("workout index is not configured")
	}
	return s.index.Search(ctx, strings.TrimSpace(query))
}

// Reindex rebuilds the index from the store.
func (s *WorkoutService) Reindex(ctx context.Context) error {
	if s.index == nil {
		return errors.New("workout index is not configured")
	}
	workouts, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.index.Reset(ctx); err != nil {
		return err
	}
	now := s.clock.Now()
	for _, workout := range workouts {
		if err := s.index.UpsertListing(ctx, domain.ListingOf(workout, now)); err != nil {
			return err
		}
	}
	return nil
}

// project keeps the index in step with the store. The store is the source
// of truth, so index failures are logged and not returned.
func (s *WorkoutService) project(ctx context.Context, workout domain.Workout) {
	if s.index == nil {
		return
	}
	if err := s.index.UpsertListing(ctx, domain.ListingOf(workout, s.clock.Now())); err != nil {
		s.logger.Warn("index upsert failed", "id", workout.ID, "error", err)
	}
}
