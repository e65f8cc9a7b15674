package domain

import (
	"fmt"
	"strings"

	apperrors "intervals/internal/platform/errors"
	"intervals/internal/platform/id"
)

const (
	DefaultRounds        = 5
	DefaultHighIntensity = 30.0
	DefaultLowIntensity  = 30.0
	DefaultWarmup        = 5 * 60.0
	DefaultCoolDown      = 5 * 60.0

	SampleID     = "example"
	SampleName   = "Example"
	SampleRounds = 20
)

// Plan describes a workout in terms of its rounds and segment lengths.
// Warmup or CoolDown of zero leaves that interval out.
type Plan struct {
	Name          string
	Rounds        int
	HighIntensity float64
	LowIntensity  float64
	Warmup        float64
	CoolDown      float64
}

// DefaultPlan is the plan a new workout starts from.
func DefaultPlan() Plan {
	return Plan{
		Rounds:        DefaultRounds,
		HighIntensity: DefaultHighIntensity,
		LowIntensity:  DefaultLowIntensity,
		Warmup:        DefaultWarmup,
		CoolDown:      DefaultCoolDown,
	}
}

func (p Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: workout name is required", apperrors.ErrInvalidInput)
	}
	if p.Rounds < 0 {
		return fmt.Errorf("%w: rounds must not be negative", apperrors.ErrInvalidInput)
	}
	if p.Rounds > 0 && (p.HighIntensity <= 0 || p.LowIntensity <= 0) {
		return fmt.Errorf("%w: round durations must be positive", apperrors.ErrInvalidInput)
	}
	if p.Warmup < 0 || p.CoolDown < 0 {
		return fmt.Errorf("%w: warmup and cooldown must not be negative", apperrors.ErrInvalidInput)
	}
	if p.Rounds == 0 && p.Warmup == 0 && p.CoolDown == 0 {
		return fmt.Errorf("%w: workout has no intervals", apperrors.ErrInvalidInput)
	}
	return nil
}

// GenerateRounds builds rounds pairs of high then low intensity intervals.
func GenerateRounds(ids id.Generator, rounds int, high, low float64) []Interval {
	if rounds <= 0 {
		return []Interval{}
	}
	out := make([]Interval, 0, rounds*2)
	for r := 0; r < rounds; r++ {
		out = append(out,
			Interval{ID: ids.New(), Type: IntervalHighIntensity, Duration: high},
			Interval{ID: ids.New(), Type: IntervalLowIntensity, Duration: low},
		)
	}
	return out
}

// Intervals expands the plan to [warmup] + rounds x [high, low] + [cooldown].
func (p Plan) Intervals(ids id.Generator) []Interval {
	out := make([]Interval, 0, p.Rounds*2+2)
	if p.Warmup > 0 {
		out = append(out, Interval{ID: ids.New(), Type: IntervalWarmup, Duration: p.Warmup})
	}
	out = append(out, GenerateRounds(ids, p.Rounds, p.HighIntensity, p.LowIntensity)...)
	if p.CoolDown > 0 {
		out = append(out, Interval{ID: ids.New(), Type: IntervalCoolDown, Duration: p.CoolDown})
	}
	return out
}

// Generate creates a new workout with a fresh id from a plan.
func Generate(ids id.Generator, plan Plan) (Workout, error) {
	if err := plan.Validate(); err != nil {
		return Workout{}, err
	}
	w := Workout{ID: ids.New(), Name: strings.TrimSpace(plan.Name), Intervals: plan.Intervals(ids)}
	return w, w.Validate()
}

// PlanOf recovers an editable plan from an existing workout. Rounds is the
// number of high and low intervals halved; each duration is taken from the
// first interval of its type, falling back to the default.
func PlanOf(w Workout) Plan {
	plan := DefaultPlan()
	plan.Name = w.Name
	found := map[IntervalType]bool{}
	pairs := 0
	for _, interval := range w.Intervals {
		switch interval.Type {
		case IntervalHighIntensity, IntervalLowIntensity:
			pairs++
		}
		if found[interval.Type] {
			continue
		}
		found[interval.Type] = true
		switch interval.Type {
		case IntervalHighIntensity:
			plan.HighIntensity = interval.Duration
		case IntervalLowIntensity:
			plan.LowIntensity = interval.Duration
		case IntervalWarmup:
			plan.Warmup = interval.Duration
		case IntervalCoolDown:
			plan.CoolDown = interval.Duration
		}
	}
	plan.Rounds = pairs / 2
	return plan
}

// Sample is the workout shown to a companion with nothing stored yet. Its id
// is always SampleID so a listed sample can be fetched again.
func Sample(ids id.Generator) Workout {
	plan := DefaultPlan()
	plan.Name = SampleName
	plan.Rounds = SampleRounds
	return Workout{ID: SampleID, Name: plan.Name, Intervals: plan.Intervals(ids)}
}
