package domain

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrEngineMisuse reports an operation the engine's current state does not allow.
var ErrEngineMisuse = errors.New("engine misuse")

const DefaultTickSeconds = 0.25

// Phase is one interval as the engine plays it.
type Phase struct {
	IntervalID string
	Type       string
	Name       string
	Duration   float64
	// Round is 1-based for intervals inside a round and 0 otherwise.
	Round int
}

type Outcome int

const (
	OutcomeCounting Outcome = iota
	OutcomeAdvanced
	OutcomeFinished
)

// Interval type names the engine colors and cues by.
const (
	TypeWarmup        = "warmup"
	TypeHighIntensity = "highIntensity"
	TypeLowIntensity  = "lowIntensity"
	TypeCoolDown      = "coolDown"
)

// Engine counts a workout down phase by phase. The phase list is the only
// source of phase order.
type Engine struct {
	mu        sync.Mutex
	phases    []Phase
	rounds    int
	total     float64
	index     int
	remaining float64
	elapsed   float64
	started   bool
	running   bool
	finished  bool
}

func NewEngine(phases []Phase) *Engine {
	e := &Engine{phases: append([]Phase(nil), phases...)}
	for _, phase := range e.phases {
		e.total += phase.Duration
		if phase.Round > e.rounds {
			e.rounds = phase.Round
		}
	}
	return e
}

// Start rewinds to the first phase and starts counting.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.phases) == 0 {
		return fmt.Errorf("%w: workout has no intervals", ErrEngineMisuse)
	}
	e.index = 0
	e.remaining = e.phases[0].Duration
	e.elapsed = 0
	e.started = true
	e.running = true
	e.finished = false
	return nil
}

// Stop is safe in any state.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Tick subtracts delta while the current phase has time left. Once it is
// used up the next tick moves to the following phase, or finishes the
// workout after the last one.
func (e *Engine) Tick(delta float64) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		if !e.started {
			return OutcomeCounting, fmt.Errorf("%w: tick before start", ErrEngineMisuse)
		}
		return OutcomeCounting, fmt.Errorf("%w: tick after stop", ErrEngineMisuse)
	}
	if delta <= 0 || math.IsNaN(delta) {
		return OutcomeCounting, fmt.Errorf("%w: tick delta must be positive", ErrEngineMisuse)
	}
	if e.remaining > 0 {
		step := math.Min(delta, e.remaining)
		e.remaining -= delta
		e.elapsed += step
		return OutcomeCounting, nil
	}
	if e.index+1 < len(e.phases) {
		e.index++
		e.remaining = e.phases[e.index].Duration
		return OutcomeAdvanced, nil
	}
	e.running = false
	e.finished = true
	return OutcomeFinished, nil
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Snapshot is a display-ready view of the engine. Remaining never goes below
// zero.
type Snapshot struct {
	Index      int
	Count      int
	IntervalID string
	Type       string
	Name       string
	Round      int
	Rounds     int
	Duration   float64
	Remaining  float64
	Progress   float64
	Elapsed    float64
	Total      float64
	Running    bool
	Finished   bool
	HeartRate  float64
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		Index:    e.index,
		Count:    len(e.phases),
		Rounds:   e.rounds,
		Elapsed:  e.elapsed,
		Total:    e.total,
		Running:  e.running,
		Finished: e.finished,
	}
	if len(e.phases) == 0 {
		return s
	}
	phase := e.phases[e.index]
	s.IntervalID = phase.IntervalID
	s.Type = phase.Type
	s.Name = phase.Name
	s.Round = phase.Round
	s.Duration = phase.Duration
	s.Remaining = phase.Duration
	if e.started {
		s.Remaining = math.Max(e.remaining, 0)
	}
	if phase.Duration > 0 {
		s.Progress = math.Min(1, (phase.Duration-s.Remaining)/phase.Duration)
	}
	return s
}

// RoundLabel is "Round r of R" inside a round and empty elsewhere.
func (s Snapshot) RoundLabel() string {
	if s.Round == 0 || s.Rounds == 0 {
		return ""
	}
	return fmt.Sprintf("Round %d of %d", s.Round, s.Rounds)
}

// Clock renders the remaining time as "M:SS".
func (s Snapshot) Clock() string {
	return FormatClock(s.Remaining)
}

// FormatClock renders a countdown as "M:SS". Negative input shows as 0:00.
func FormatClock(seconds float64) string {
	total := int(math.Ceil(math.Max(seconds, 0)))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
