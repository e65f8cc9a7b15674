package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "intervals/internal/platform/errors"
)

type IntervalType string

const (
	IntervalWarmup        IntervalType = "warmup"
	IntervalHighIntensity IntervalType = "highIntensity"
	IntervalLowIntensity  IntervalType = "lowIntensity"
	IntervalCoolDown      IntervalType = "coolDown"
)

func (t IntervalType) Validate() error {
	switch t {
	case IntervalWarmup, IntervalHighIntensity, IntervalLowIntensity, IntervalCoolDown:
		return nil
	default:
		return fmt.Errorf("%w: unsupported interval type %q", apperrors.ErrInvalidInput, string(t))
	}
}

// Name is the display label shown during playback.
func (t IntervalType) Name() string {
	switch t {
	case IntervalWarmup:
		return "Warm-up"
	case IntervalHighIntensity:
		return "High Intensity"
	case IntervalLowIntensity:
		return "Low Intensity"
	case IntervalCoolDown:
		return "Cool Down"
	default:
		return string(t)
	}
}

// Interval is one timed segment. Duration is in seconds.
type Interval struct {
	ID       string       `json:"id"`
	Type     IntervalType `json:"type"`
	Duration float64      `json:"duration"`
}

func (i Interval) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("%w: interval id is required", apperrors.ErrInvalidInput)
	}
	if err := i.Type.Validate(); err != nil {
		return err
	}
	if i.Duration <= 0 {
		return fmt.Errorf("%w: interval %s duration must be positive", apperrors.ErrInvalidInput, i.ID)
	}
	return nil
}

type Workout struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Intervals []Interval `json:"intervals"`
}

func (w Workout) EntityID() string {
	return w.ID
}

func (w Workout) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return fmt.Errorf("%w: workout id is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: workout name is required", apperrors.ErrInvalidInput)
	}
	if len(w.Intervals) == 0 {
		return fmt.Errorf("%w: workout %s has no intervals", apperrors.ErrInvalidInput, w.ID)
	}
	seen := make(map[string]struct{}, len(w.Intervals))
	for _, interval := range w.Intervals {
		if err := interval.Validate(); err != nil {
			return err
		}
		if _, dup := seen[interval.ID]; dup {
			return fmt.Errorf("%w: duplicate interval id %s", apperrors.ErrInvalidInput, interval.ID)
		}
		seen[interval.ID] = struct{}{}
	}
	return nil
}

// TotalDuration is the sum of all interval durations in seconds.
func (w Workout) TotalDuration() float64 {
	total := 0.0
	for _, interval := range w.Intervals {
		total += interval.Duration
	}
	return total
}

// Rounds counts high-intensity intervals immediately followed by a
// low-intensity one.
func (w Workout) Rounds() int {
	rounds := 0
	for i := 0; i+1 < len(w.Intervals); i++ {
		if w.Intervals[i].Type == IntervalHighIntensity && w.Intervals[i+1].Type == IntervalLowIntensity {
			rounds++
			i++
		}
	}
	return rounds
}

// RoundAt reports the 1-based round that contains the interval at index, or 0
// when the interval is not part of a round.
func (w Workout) RoundAt(index int) int {
	if index < 0 || index >= len(w.Intervals) {
		return 0
	}
	round := 0
	for i := 0; i+1 < len(w.Intervals); i++ {
		if w.Intervals[i].Type == IntervalHighIntensity && w.Intervals[i+1].Type == IntervalLowIntensity {
			round++
			if index == i || index == i+1 {
				return round
			}
			i++
		}
	}
	return 0
}

// Summary renders "Warmup + N rounds + Cooldown", with the warmup and
// cooldown parts present only when the workout starts or ends with them.
func (w Workout) Summary() string {
	var b strings.Builder
	if len(w.Intervals) > 0 && w.Intervals[0].Type == IntervalWarmup {
		b.WriteString("Warmup + ")
	}
	b.WriteString(strconv.Itoa(w.Rounds()))
	b.WriteString(" rounds")
	if n := len(w.Intervals); n > 0 && w.Intervals[n-1].Type == IntervalCoolDown {
		b.WriteString(" + Cooldown")
	}
	return b.String()
}

// Listing is the projected row kept in the search index.
type Listing struct {
	ID            string
	Name          string
	IntervalCount int
	Rounds        int
	TotalSeconds  float64
	Summary       string
	UpdatedAt     time.Time
}

func ListingOf(w Workout, updatedAt time.Time) Listing {
	return Listing{
		ID:            w.ID,
		Name:          w.Name,
		IntervalCount: len(w.Intervals),
		Rounds:        w.Rounds(),
		TotalSeconds:  w.TotalDuration(),
		Summary:       w.Summary(),
		UpdatedAt:     updatedAt,
	}
}
