package out

import "intervals/internal/modules/playback/domain"

// Notifier receives fire-and-forget cues. Implementations must not block
// the runner for long.
type Notifier interface {
	PhaseBoundary(next domain.Snapshot)
	Completed(final domain.Snapshot)
}

// HeartRateFeed delivers periodic samples. A nil channel means no feed.
type HeartRateFeed interface {
	Samples() <-chan domain.HeartRateSample
}
