package usecase

import (
	"context"

	"intervals/internal/modules/workout/domain"
	"intervals/internal/modules/workout/dto"
	workoutin "intervals/internal/modules/workout/port/in"
	"intervals/internal/modules/workout/service"
)

type Interactor struct {
	svc *service.WorkoutService
}

func NewInteractor(svc *service.WorkoutService) workoutin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.WorkoutOutput, error) {
	workout, err := i.svc.Create(ctx, toPlan(input.Plan))
	if err != nil {
		return dto.WorkoutOutput{}, err
	}
	return toWorkoutOutput(workout), nil
}

func (i *Interactor) Edit(ctx context.Context, input dto.EditInput) (dto.WorkoutOutput, error) {
	workout, err := i.svc.Edit(ctx, input.ID, toPlan(input.Plan))
	if err != nil {
		return dto.WorkoutOutput{}, err
	}
	return toWorkoutOutput(workout), nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.WorkoutOutput, error) {
	workout, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.WorkoutOutput{}, err
	}
	return toWorkoutOutput(workout), nil
}

func (i *Interactor) GetPlan(ctx context.Context, id string) (dto.PlanOutput, error) {
	workout, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.PlanOutput{}, err
	}
	plan := domain.PlanOf(workout)
	return dto.PlanOutput{ID: workout.ID, Plan: dto.PlanInput{
		Name:          plan.Name,
		Rounds:        plan.Rounds,
		HighIntensity: plan.HighIntensity,
		LowIntensity:  plan.LowIntensity,
		Warmup:        plan.Warmup,
		CoolDown:      plan.CoolDown,
	}}, nil
}

func (i *Interactor) List(ctx context.Context, input dto.ListInput) ([]dto.WorkoutOutput, error) {
	workouts, err := i.svc.List(ctx, input.SampleWhenEmpty)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WorkoutOutput, 0, len(workouts))
	for _, workout := range workouts {
		out = append(out, toWorkoutOutput(workout))
	}
	return out, nil
}

func (i *Interactor) Delete(ctx context.Context, id string) error {
	return i.svc.Delete(ctx, id)
}

func (i *Interactor) DeleteAll(ctx context.Context) error {
	return i.svc.DeleteAll(ctx)
}

func (i *Interactor) Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error) {
	mode := service.MergeMode(input.Merge)
	if mode == "" {
		mode = service.MergeUpsert
	}
	workouts := make([]domain.Workout, 0, len(input.Workouts))
	for _, in := range input.Workouts {
		workout := domain.Workout{ID: in.ID, Name: in.Name, Intervals: make([]domain.Interval, 0, len(in.Intervals))}
		for _, interval := range in.Intervals {
			workout.Intervals = append(workout.Intervals, domain.Interval{
				ID:       interval.ID,
				Type:     domain.IntervalType(interval.Type),
				Duration: interval.Duration,
			})
		}
		workouts = append(workouts, workout)
	}
	count, err := i.svc.Import(ctx, workouts, mode)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	return dto.ImportOutput{Imported: count, Merge: string(mode)}, nil
}

func (i *Interactor) Search(ctx context.Context, query string) ([]dto.ListingOutput, error) {
	listings, err := i.svc.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ListingOutput, 0, len(listings))
	for _, listing := range listings {
		out = append(out, dto.ListingOutput{
			ID:            listing.ID,
			Name:          listing.Name,
			Summary:       listing.Summary,
			IntervalCount: listing.IntervalCount,
			TotalDuration: domain.FormatDuration(listing.TotalSeconds),
			UpdatedAt:     listing.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context) error {
	return i.svc.Reindex(ctx)
}

func toPlan(in dto.PlanInput) domain.Plan {
	return domain.Plan{
		Name:          in.Name,
		Rounds:        in.Rounds,
		HighIntensity: in.HighIntensity,
		LowIntensity:  in.LowIntensity,
		Warmup:        in.Warmup,
		CoolDown:      in.CoolDown,
	}
}

func toWorkoutOutput(workout domain.Workout) dto.WorkoutOutput {
	out := dto.WorkoutOutput{
		ID:            workout.ID,
		Name:          workout.Name,
		Summary:       workout.Summary(),
		TotalSeconds:  workout.TotalDuration(),
		TotalDuration: domain.FormatDuration(workout.TotalDuration()),
		Rounds:        workout.Rounds(),
		Intervals:     make([]dto.IntervalOutput, 0, len(workout.Intervals)),
	}
	for idx, interval := range workout.Intervals {
		out.Intervals = append(out.Intervals, dto.IntervalOutput{
			ID:       interval.ID,
			Type:     string(interval.Type),
			Name:     interval.Type.Name(),
			Duration: interval.Duration,
			Round:    workout.RoundAt(idx),
		})
	}
	return out
}
