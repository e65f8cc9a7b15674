package out

import (
	"context"

	"intervals/internal/modules/workout/domain"
)

type WorkoutStore interface {
	Load(ctx context.Context) ([]domain.Workout, error)
	Get(ctx context.Context, id string) (domain.Workout, bool, error)
	Add(ctx context.Context, workout domain.Workout) error
	AddAll(ctx context.Context, workouts []domain.Workout) error
	Upsert(ctx context.Context, workouts []domain.Workout) error
	Update(ctx context.Context, workout domain.Workout) (bool, error)
	Delete(ctx context.Context, workout domain.Workout) error
	DeleteAll(ctx context.Context) error
}

type WorkoutIndex interface {
	Reset(ctx context.Context) error
	UpsertListing(ctx context.Context, listing domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]domain.Listing, error)
}
