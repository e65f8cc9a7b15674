package domain

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as "M:SS min" from one minute up and as
// "S sec" below that.
func FormatDuration(seconds float64) string {
	total := wholeSeconds(seconds)
	minutes, secs := total/60, total%60
	if minutes > 0 {
		return fmt.Sprintf("%d:%02d min", minutes, secs)
	}
	return fmt.Sprintf("%d sec", secs)
}

func wholeSeconds(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return int(seconds)
}
