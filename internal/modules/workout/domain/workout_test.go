package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"intervals/internal/modules/workout/domain"
	apperrors "intervals/internal/platform/errors"
)

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func TestGenerateDefaultPlan(t *testing.T) {
	t.Parallel()
	plan := domain.DefaultPlan()
	plan.Name = "Tuesday"
	w, err := domain.Generate(&seqIDs{}, plan)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := len(w.Intervals); got != 12 {
		t.Fatalf("intervals = %d, want 12", got)
	}
	if got := w.TotalDuration(); got != 900 {
		t.Fatalf("total = %v, want 900", got)
	}
	if w.Intervals[0].Type != domain.IntervalWarmup || w.Intervals[11].Type != domain.IntervalCoolDown {
		t.Fatalf("unexpected ends: %s .. %s", w.Intervals[0].Type, w.Intervals[11].Type)
	}
	for i := 1; i < 11; i += 2 {
		if w.Intervals[i].Type != domain.IntervalHighIntensity || w.Intervals[i+1].Type != domain.IntervalLowIntensity {
			t.Fatalf("round at %d is %s/%s", i, w.Intervals[i].Type, w.Intervals[i+1].Type)
		}
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("generated workout invalid: %v", err)
	}
}

func TestGenerateOmitsZeroWarmupAndCooldown(t *testing.T) {
	t.Parallel()
	w, err := domain.Generate(&seqIDs{}, domain.Plan{Name: "Bare", Rounds: 3, HighIntensity: 20, LowIntensity: 10})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(w.Intervals) != 6 {
		t.Fatalf("intervals = %d, want 6", len(w.Intervals))
	}
	if w.Summary() != "3 rounds" {
		t.Fatalf("summary = %q", w.Summary())
	}
}

func TestGenerateRejectsInvalidPlans(t *testing.T) {
	t.Parallel()
	cases := map[string]domain.Plan{
		"missing name":   {Rounds: 1, HighIntensity: 1, LowIntensity: 1},
		"negative round": {Name: "x", Rounds: -1},
		"zero high":      {Name: "x", Rounds: 2, LowIntensity: 30},
		"empty":          {Name: "x"},
	}
	for name, plan := range cases {
		name, plan := name, plan
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := domain.Generate(&seqIDs{}, plan); !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()
	ids := &seqIDs{}
	full := domain.Sample(ids)
	if got := full.Summary(); got != "Warmup + 20 rounds + Cooldown" {
		t.Fatalf("sample summary = %q", got)
	}
	noCool := domain.Workout{ID: "w", Name: "w", Intervals: []domain.Interval{
		{ID: "a", Type: domain.IntervalWarmup, Duration: 60},
		{ID: "b", Type: domain.IntervalHighIntensity, Duration: 30},
		{ID: "c", Type: domain.IntervalLowIntensity, Duration: 30},
	}}
	if got := noCool.Summary(); got != "Warmup + 1 rounds" {
		t.Fatalf("summary = %q", got)
	}
	if got := (domain.Workout{}).Summary(); got != "0 rounds" {
		t.Fatalf("empty summary = %q", got)
	}
}

func TestRoundAt(t *testing.T) {
	t.Parallel()
	plan := domain.DefaultPlan()
	plan.Name = "r"
	plan.Rounds = 2
	w, _ := domain.Generate(&seqIDs{}, plan)
	want := []int{0, 1, 1, 2, 2, 0}
	for i, expected := range want {
		if got := w.RoundAt(i); got != expected {
			t.Fatalf("RoundAt(%d) = %d, want %d", i, got, expected)
		}
	}
	if w.RoundAt(99) != 0 {
		t.Fatal("out of range index should be round 0")
	}
}

func TestPlanOfRoundTrip(t *testing.T) {
	t.Parallel()
	plan := domain.Plan{Name: "Hill", Rounds: 8, HighIntensity: 45, LowIntensity: 15, Warmup: 120, CoolDown: 180}
	w, err := domain.Generate(&seqIDs{}, plan)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := domain.PlanOf(w); got != plan {
		t.Fatalf("PlanOf = %+v, want %+v", got, plan)
	}
}

func TestPlanOfFillsDefaults(t *testing.T) {
	t.Parallel()
	w := domain.Workout{ID: "w", Name: "Only warmup", Intervals: []domain.Interval{
		{ID: "a", Type: domain.IntervalWarmup, Duration: 90},
	}}
	plan := domain.PlanOf(w)
	if plan.Rounds != 0 || plan.Warmup != 90 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.HighIntensity != domain.DefaultHighIntensity || plan.CoolDown != domain.DefaultCoolDown {
		t.Fatalf("defaults not applied: %+v", plan)
	}
}

func TestWorkoutValidate(t *testing.T) {
	t.Parallel()
	base := domain.Workout{ID: "w", Name: "n", Intervals: []domain.Interval{{ID: "a", Type: domain.IntervalWarmup, Duration: 1}}}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid workout: %v", err)
	}
	empty := base
	empty.Intervals = nil
	if err := empty.Validate(); err == nil {
		t.Fatal("workout without intervals should fail")
	}
	dup := base
	dup.Intervals = []domain.Interval{base.Intervals[0], base.Intervals[0]}
	if err := dup.Validate(); err == nil {
		t.Fatal("duplicate interval ids should fail")
	}
	badType := base
	badType.Intervals = []domain.Interval{{ID: "a", Type: "sprint", Duration: 1}}
	if err := badType.Validate(); err == nil {
		t.Fatal("unknown interval type should fail")
	}
	zero := base
	zero.Intervals = []domain.Interval{{ID: "a", Type: domain.IntervalWarmup}}
	if err := zero.Validate(); err == nil {
		t.Fatal("zero duration should fail")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	cases := map[float64]string{
		0:     "0 sec",
		45:    "45 sec",
		59.9:  "59 sec",
		60:    "1:00 min",
		900:   "15:00 min",
		125.5: "2:05 min",
		-3:    "0 sec",
	}
	for in, want := range cases {
		if got := domain.FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestIntervalTypeNames(t *testing.T) {
	t.Parallel()
	if domain.IntervalHighIntensity.Name() != "High Intensity" || domain.IntervalCoolDown.Name() != "Cool Down" {
		t.Fatal("unexpected interval type names")
	}
}
