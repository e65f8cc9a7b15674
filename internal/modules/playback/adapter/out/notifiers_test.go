package out_test

import (
	"bytes"
	"testing"

	out "intervals/internal/modules/playback/adapter/out"
	"intervals/internal/modules/playback/domain"
)

type countingNotifier struct{ boundaries, completed int }

func (c *countingNotifier) PhaseBoundary(domain.Snapshot) { c.boundaries++ }
func (c *countingNotifier) Completed(domain.Snapshot) { c.completed++ }

func TestBellNotifierWritesBells(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	bell := out.NewBellNotifier(&buf)
	bell.PhaseBoundary(domain.Snapshot{})
	bell.Completed(domain.Snapshot{})
	if buf.String() != "\a\a\a\a" {
		t.Fatalf("bell output = %q", buf.String())
	}
}

func TestFanoutSkipsNilAndForwards(t *testing.T) {
	t.Parallel()
	a, b := &countingNotifier{}, &countingNotifier{}
	fan := out.NewFanout(a, nil, b)
	fan.PhaseBoundary(domain.Snapshot{})
	fan.PhaseBoundary(domain.Snapshot{})
	fan.Completed(domain.Snapshot{})
	if a.boundaries != 2 || b.boundaries != 2 || a.completed != 1 || b.completed != 1 {
		t.Fatalf("fanout counts a=%+v b=%+v", a, b)
	}
	if _, ok := out.NewFanout().(out.NoopNotifier); !ok {
		t.Fatal("empty fanout should be a no-op notifier")
	}
}

func TestNullFeedHasNoSamples(t *testing.T) {
	t.Parallel()
	if (out.NullHeartRateFeed{}).Samples() != nil {
		t.Fatal("null feed must return a nil channel")
	}
}
