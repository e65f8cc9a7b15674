package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"intervals/internal/modules/workout/adapter/out"
	"intervals/internal/modules/workout/domain"
)

func newIndex(t *testing.T) *out.SQLiteWorkoutIndex {
	t.Helper()
	index, err := out.NewSQLiteWorkoutIndex(filepath.Join(t.TempDir(), "db", "intervals.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestSQLiteIndexSearchIsCaseInsensitiveAndEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	index := newIndex(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, listing := range []domain.Listing{
		{ID: "a", Name: "Morning Sprint", IntervalCount: 12, Rounds: 5, TotalSeconds: 900, Summary: "5 Rounds", UpdatedAt: now},
		{ID: "b", Name: "100% effort", IntervalCount: 4, Rounds: 1, TotalSeconds: 660, Summary: "1 Round", UpdatedAt: now},
		{ID: "c", Name: "Easy_spin", IntervalCount: 2, Rounds: 0, TotalSeconds: 600, Summary: "0 Rounds", UpdatedAt: now},
	} {
		if err := index.UpsertListing(ctx, listing); err != nil {
			t.Fatalf("upsert %s: %v", listing.ID, err)
		}
	}

	got, err := index.Search(ctx, "SPRINT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" || !got[0].UpdatedAt.Equal(now) {
		t.Fatalf("unexpected sprint results: %+v", got)
	}

	got, err = index.Search(ctx, "%")
	if err != nil {
		t.Fatalf("search percent: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("percent should match literally, got %+v", got)
	}

	got, err = index.Search(ctx, "")
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(got))
	}
}

func TestSQLiteIndexUpsertDeleteAndReset(t *testing.T) {
	ctx := context.Background()
	index := newIndex(t)
	listing := domain.Listing{ID: "a", Name: "Tempo", IntervalCount: 4, Rounds: 1, TotalSeconds: 660, Summary: "1 Round", UpdatedAt: time.Now()}
	if err := index.UpsertListing(ctx, listing); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	listing.Name = "Tempo Long"
	if err := index.UpsertListing(ctx, listing); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	got, err := index.Search(ctx, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Tempo Long" {
		t.Fatalf("upsert should replace the row, got %+v", got)
	}

	if err := index.DeleteListing(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := index.Search(ctx, ""); len(got) != 0 {
		t.Fatalf("expected empty index after delete, got %+v", got)
	}

	_ = index.UpsertListing(ctx, listing)
	if err := index.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got, _ := index.Search(ctx, ""); len(got) != 0 {
		t.Fatalf("expected empty index after reset, got %+v", got)
	}
}
