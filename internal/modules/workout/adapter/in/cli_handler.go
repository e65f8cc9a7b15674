package in

import (
	"context"

	"intervals/internal/modules/workout/dto"
	workoutin "intervals/internal/modules/workout/port/in"
)

type CLIHandler struct {
	usecase workoutin.Usecase
}

func NewCLIHandler(usecase workoutin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Create(ctx context.Context, plan dto.PlanInput) (dto.WorkoutOutput, error) {
	return h.usecase.Create(ctx, dto.CreateInput{Plan: plan})
}

func (h CLIHandler) Edit(ctx context.Context, id string, plan dto.PlanInput) (dto.WorkoutOutput, error) {
	return h.usecase.Edit(ctx, dto.EditInput{ID: id, Plan: plan})
}

func (h CLIHandler) Get(ctx context.Context, id string) (dto.WorkoutOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) GetPlan(ctx context.Context, id string) (dto.PlanOutput, error) {
	return h.usecase.GetPlan(ctx, id)
}

func (h CLIHandler) List(ctx context.Context, sampleWhenEmpty bool) ([]dto.WorkoutOutput, error) {
	return h.usecase.List(ctx, dto.ListInput{SampleWhenEmpty: sampleWhenEmpty})
}

func (h CLIHandler) Delete(ctx context.Context, id string) error {
	return h.usecase.Delete(ctx, id)
}

func (h CLIHandler) DeleteAll(ctx context.Context) error {
	return h.usecase.DeleteAll(ctx)
}

func (h CLIHandler) Search(ctx context.Context, query string) ([]dto.ListingOutput, error) {
	return h.usecase.Search(ctx, query)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}
