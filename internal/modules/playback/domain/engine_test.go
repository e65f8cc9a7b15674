package domain_test

import (
	"errors"
	"math"
	"testing"

	"intervals/internal/modules/playback/domain"
)

func generated(rounds int, high, low, warmup, cooldown float64) []domain.Phase {
	phases := []domain.Phase{{IntervalID: "w", Type: domain.TypeWarmup, Name: "Warm-up", Duration: warmup}}
	for r := 1; r <= rounds; r++ {
		phases = append(phases,
			domain.Phase{IntervalID: "h", Type: domain.TypeHighIntensity, Name: "High Intensity", Duration: high, Round: r},
			domain.Phase{IntervalID: "l", Type: domain.TypeLowIntensity, Name: "Low Intensity", Duration: low, Round: r},
		)
	}
	return append(phases, domain.Phase{IntervalID: "c", Type: domain.TypeCoolDown, Name: "Cool Down", Duration: cooldown})
}

func TestEnginePlaysDefaultWorkoutToCompletion(t *testing.T) {
	t.Parallel()
	e := domain.NewEngine(generated(5, 30, 30, 300, 300))
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	visited := 1
	ticks := 0
	for {
		outcome, err := e.Tick(domain.DefaultTickSeconds)
		if err != nil {
			t.Fatalf("tick %d: %v", ticks, err)
		}
		ticks++
		if outcome == domain.OutcomeAdvanced {
			visited++
		}
		if outcome == domain.OutcomeFinished {
			break
		}
		if ticks > 10000 {
			t.Fatal("engine never finished")
		}
	}
	if visited != 12 {
		t.Fatalf("visited %d intervals, want 12", visited)
	}
	snap := e.Snapshot()
	if math.Abs(snap.Elapsed-900) > 1e-9 || snap.Total != 900 {
		t.Fatalf("elapsed %.2f total %.2f, want 900", snap.Elapsed, snap.Total)
	}
	if !snap.Finished || snap.Running || e.Running() {
		t.Fatalf("engine must be stopped after finishing: %+v", snap)
	}
	if _, err := e.Tick(domain.DefaultTickSeconds); !errors.Is(err, domain.ErrEngineMisuse) {
		t.Fatalf("tick after finish = %v", err)
	}
}

func TestEngineRejectsMisuse(t *testing.T) {
	t.Parallel()
	e := domain.NewEngine(generated(1, 1, 1, 1, 1))
	if _, err := e.Tick(0.25); !errors.Is(err, domain.ErrEngineMisuse) {
		t.Fatalf("tick before start = %v", err)
	}
	before := e.Snapshot()
	if before.Running || before.Elapsed != 0 || before.Remaining != before.Duration {
		t.Fatalf("snapshot mutated by rejected tick: %+v", before)
	}
	if err := domain.NewEngine(nil).Start(); !errors.Is(err, domain.ErrEngineMisuse) {
		t.Fatalf("start empty = %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Tick(0); !errors.Is(err, domain.ErrEngineMisuse) {
		t.Fatalf("zero delta = %v", err)
	}
	e.Stop()
	e.Stop()
	if _, err := e.Tick(0.25); !errors.Is(err, domain.ErrEngineMisuse) {
		t.Fatalf("tick after stop = %v", err)
	}
}

func TestSnapshotClampsAndLabels(t *testing.T) {
	t.Parallel()
	e := domain.NewEngine([]domain.Phase{
		{IntervalID: "h", Type: domain.TypeHighIntensity, Name: "High Intensity", Duration: 0.3, Round: 1},
		{IntervalID: "l", Type: domain.TypeLowIntensity, Name: "Low Intensity", Duration: 1, Round: 1},
	})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	_, _ = e.Tick(0.25)
	_, _ = e.Tick(0.25)
	snap := e.Snapshot()
	if snap.Remaining != 0 || snap.Clock() != "0:00" || snap.Progress != 1 {
		t.Fatalf("overshoot must clamp at zero: %+v", snap)
	}
	if snap.RoundLabel() != "Round 1 of 1" {
		t.Fatalf("round label = %q", snap.RoundLabel())
	}
	if outcome, _ := e.Tick(0.25); outcome != domain.OutcomeAdvanced {
		t.Fatalf("expected advance, got %v", outcome)
	}
	if snap := e.Snapshot(); snap.Index != 1 || snap.Type != domain.TypeLowIntensity || snap.Remaining != 1 {
		t.Fatalf("unexpected snapshot after advance: %+v", snap)
	}
}

func TestStartRewinds(t *testing.T) {
	t.Parallel()
	e := domain.NewEngine(generated(2, 1, 1, 1, 1))
	_ = e.Start()
	for i := 0; i < 10; i++ {
		_, _ = e.Tick(0.5)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	snap := e.Snapshot()
	if snap.Index != 0 || snap.Elapsed != 0 || snap.Remaining != 1 || snap.RoundLabel() != "" {
		t.Fatalf("start must rewind: %+v", snap)
	}
}

func TestFormatClockClampsAtZero(t *testing.T) {
	t.Parallel()
	cases := map[float64]string{
		-0.25: "0:00",
		0:     "0:00",
		0.25:  "0:01",
		30:    "0:30",
		299.5: "5:00",
		61:    "1:01",
	}
	for in, want := range cases {
		if got := domain.FormatClock(in); got != want {
			t.Errorf("FormatClock(%v) = %q, want %q", in, got, want)
		}
	}
}
