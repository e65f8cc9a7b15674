package domain

import "time"

// HeartRateSample is one reading from a biometric feed. The engine never
// reads it; it only travels with snapshots to the display.
type HeartRateSample struct {
	BPM float64
	At  time.Time
}
