package in

import (
	"context"

	"intervals/internal/modules/workout/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.WorkoutOutput, error)
	Edit(ctx context.Context, input dto.EditInput) (dto.WorkoutOutput, error)
	Get(ctx context.Context, id string) (dto.WorkoutOutput, error)
	GetPlan(ctx context.Context, id string) (dto.PlanOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.WorkoutOutput, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error)
	Search(ctx context.Context, query string) ([]dto.ListingOutput, error)
	Reindex(ctx context.Context) error
}
