package out

import (
	"io"
	"sync"

	"intervals/internal/modules/playback/domain"
	playbackout "intervals/internal/modules/playback/port/out"
)

// BellNotifier rings the terminal bell: once per phase, three times at the end.
type BellNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellNotifier(w io.Writer) *BellNotifier {
	return &BellNotifier{w: w}
}

func (n *BellNotifier) PhaseBoundary(domain.Snapshot) {
	n.ring("\a")
}

func (n *BellNotifier) Completed(domain.Snapshot) {
	n.ring("\a\a\a")
}

func (n *BellNotifier) ring(seq string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = io.WriteString(n.w, seq)
}

type NoopNotifier struct{}

func (NoopNotifier) PhaseBoundary(domain.Snapshot) {}
func (NoopNotifier) Completed(domain.Snapshot) {}

// Fanout forwards every cue to each notifier in order.
type Fanout []playbackout.Notifier

func NewFanout(notifiers ...playbackout.Notifier) playbackout.Notifier {
	out := make(Fanout, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return NoopNotifier{}
	}
	return out
}

func (f Fanout) PhaseBoundary(next domain.Snapshot) {
	for _, n := range f {
		n.PhaseBoundary(next)
	}
}

func (f Fanout) Completed(final domain.Snapshot) {
	for _, n := range f {
		n.Completed(final)
	}
}

// NullHeartRateFeed never delivers a sample.
type NullHeartRateFeed struct{}

func (NullHeartRateFeed) Samples() <-chan domain.HeartRateSample {
	return nil
}
